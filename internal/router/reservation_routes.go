package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-seat-reservation/internal/middleware"
)

// RegisterReservations registers the student-facing endpoints under /v1.
// Students authenticate per request with their id and password, so there is
// no JWT middleware here. Mutations are rate limited and flush the read
// cache; the seat board and schedules are served from it.
func RegisterReservations(e *echo.Echo, d Deps) {
	limit := middleware.RateLimit(d.Config.RateLimit, d.Redis, d.Log)
	invalidate := middleware.InvalidateCache(d.Config.Cache, d.Redis, d.Log)
	cached := middleware.ResponseCache(d.Config.Cache, d.Redis, d.Log)

	g := e.Group("/v1")

	g.POST("/students", d.Students.Register, limit)

	g.GET("/seats", d.Reservations.SeatBoard, cached)
	g.GET("/reservations", d.Reservations.List, cached)

	g.POST("/reservations", d.Reservations.Create, limit, invalidate)
	g.PATCH("/reservations/extend", d.Reservations.Extend, limit, invalidate)
	g.PATCH("/reservations/checkout", d.Reservations.Checkout, limit, invalidate)
}
