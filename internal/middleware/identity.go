package middleware

// identity.go holds the context keys set by AdminAuth and helpers to read
// them back in handlers and other middleware.

import "github.com/labstack/echo/v4"

// Context keys.
const (
	CtxAdminID       = "admin_id"
	CtxAdminUsername = "admin_username"
	CtxRole          = "role"
)

// AdminID returns the authenticated admin id, or 0 when the request did not
// pass AdminAuth.
func AdminID(c echo.Context) uint64 {
	id, _ := c.Get(CtxAdminID).(uint64)
	return id
}

// AdminUsername returns the authenticated admin username or "".
func AdminUsername(c echo.Context) string {
	u, _ := c.Get(CtxAdminUsername).(string)
	return u
}

// clientIP returns the best guess of the caller address for rate limiting.
func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}
