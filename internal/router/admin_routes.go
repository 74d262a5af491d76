package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-seat-reservation/internal/middleware"
	"github.com/iliyamo/lab-seat-reservation/internal/utils"
)

// RegisterAdmin registers the admin login and the ADMIN-scoped roster
// endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, d Deps) {
	e.POST("/v1/admin/login", d.Admins.Login, middleware.RateLimit(d.Config.RateLimit, d.Redis, d.Log))

	// Attach middlewares at group construction time.
	g := e.Group(
		"/v1/admin",
		middleware.AdminAuth(d.Tokens),
		middleware.RequireRole(utils.RoleAdmin),
	)
	invalidate := middleware.InvalidateCache(d.Config.Cache, d.Redis, d.Log)

	g.GET("/students", d.Students.List)
	g.POST("/students", d.Students.Add)
	// Deleting a student cascades to their reservations, so the cached
	// schedules are flushed.
	g.DELETE("/students/:id", d.Students.Delete, invalidate)
}
