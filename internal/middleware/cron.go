package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CronSecret guards the expiry trigger. Callers must send
// "Authorization: Bearer <secret>". GET is only served when allowGET is
// true (non-production); an empty secret refuses every request.
func CronSecret(secret string, allowGET bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodGet && !allowGET {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden", "message": "not allowed in production"})
			}
			raw, ok := bearerToken(c)
			if !ok || secret == "" || subtle.ConstantTimeCompare([]byte(raw), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "AuthFailed", "message": "unauthorized"})
			}
			return next(c)
		}
	}
}
