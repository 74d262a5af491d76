package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-seat-reservation/internal/utils"
)

// AdminTokenParser validates an admin session token.
type AdminTokenParser interface {
	ParseAdminToken(raw string) (*utils.AdminClaims, error)
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. ok is false when the header is missing or malformed.
func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// AdminAuth validates the Bearer admin session token issued by the login
// route and stores the admin id, username and role in the context.
func AdminAuth(tokens AdminTokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "AuthFailed", "message": "missing bearer token"})
			}
			claims, err := tokens.ParseAdminToken(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "AuthFailed", "message": "invalid token"})
			}
			id, _ := claims.AdminID()
			c.Set(CtxAdminID, id)
			c.Set(CtxAdminUsername, claims.Username)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
