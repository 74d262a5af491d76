package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-seat-reservation/internal/middleware"
)

// RegisterCron registers the HTTP trigger of the expiry sweep. GET is only
// accepted outside production so the sweep can be fired from a browser.
func RegisterCron(e *echo.Echo, d Deps) {
	guard := middleware.CronSecret(d.Config.CronSecret, !d.Config.IsProduction())
	invalidate := middleware.InvalidateCache(d.Config.Cache, d.Redis, d.Log)

	e.POST("/v1/cron/expire-reservations", d.Cron.ExpireReservations, guard, invalidate)
	e.GET("/v1/cron/expire-reservations", d.Cron.ExpireReservations, guard, invalidate)
}
