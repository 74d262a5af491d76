package router // package router defines how HTTP routes are registered for the API

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/lab-seat-reservation/internal/config"
	"github.com/iliyamo/lab-seat-reservation/internal/handler"
	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/middleware"
)

// Deps bundles what the route groups need. Redis may be nil, in which case
// rate limiting and response caching pass through.
type Deps struct {
	Config       config.Config
	Log          *logger.Logger
	Redis        *redis.Client
	Tokens       middleware.AdminTokenParser
	Ping         func(ctx context.Context) error
	Reservations *handler.ReservationHandler
	Students     *handler.StudentHandler
	Admins       *handler.AdminHandler
	Cron         *handler.CronHandler
}

// Register wires every route group on e.
func Register(e *echo.Echo, d Deps) {
	RegisterRoutes(e, d.Ping)
	RegisterReservations(e, d)
	RegisterAdmin(e, d)
	RegisterCron(e, d)
}

// RegisterRoutes registers routes that do not require authentication or
// rate limiting. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, ping func(ctx context.Context) error) {
	e.GET("/healthz", handler.Health(ping))
}
