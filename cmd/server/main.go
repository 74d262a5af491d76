package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/lab-seat-reservation/internal/clock"
	"github.com/iliyamo/lab-seat-reservation/internal/config"
	"github.com/iliyamo/lab-seat-reservation/internal/database"
	"github.com/iliyamo/lab-seat-reservation/internal/handler"
	"github.com/iliyamo/lab-seat-reservation/internal/jobs"
	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/middleware"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
	"github.com/iliyamo/lab-seat-reservation/internal/queue"
	"github.com/iliyamo/lab-seat-reservation/internal/repository"
	"github.com/iliyamo/lab-seat-reservation/internal/router"
	"github.com/iliyamo/lab-seat-reservation/internal/service"
	"github.com/iliyamo/lab-seat-reservation/internal/utils"
)

func main() {
	cfg, err := config.Load() // Load .env and environment config
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "lab-seat-reservation"})
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}
	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

// run wires the server and blocks until SIGINT/SIGTERM or a listener
// failure. Every deferred cleanup runs before it returns.
func run(cfg config.Config, log *logger.Logger) error {
	clk, err := clock.Load(cfg.Timezone, cfg.DevTimeOffset)
	if err != nil {
		return err
	}
	roster := model.NewRoster(cfg.SeatCount, cfg.FixedSeats)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, db, err := openStore(ctx, cfg, clk, roster, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	hasher := utils.NewBcrypt(cfg.BcryptCost)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.AdminTokenTTLMin)

	var publisher service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		publisher = service.NewAMQPPublisher(cfg.RabbitURL, cfg.EventsQueue, log)
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.EventsQueue, cfg.AuditLogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	reservations := service.NewReservationService(store, clk, roster, hasher, publisher, log)
	students := service.NewStudentService(store, hasher, log)
	admins := service.NewAdminService(store, hasher, hasher, tokens, log)

	if cfg.AdminUsername != "" || cfg.AdminPassword != "" {
		created, err := admins.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			log.Info("seeded admin account", "username", cfg.AdminUsername)
		}
	}

	rdb, err := config.NewRedisClient(cfg.Redis)
	if err != nil {
		// Rate limiting and caching degrade to pass-through.
		log.Warn("redis unavailable", "addr", cfg.Redis.Addr, "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	expireJob := jobs.NewExpireJob(reservations, clk, log)
	if cfg.ExpireSchedule != "" {
		sched, err := jobs.Schedule(cfg.ExpireSchedule, expireJob, log)
		if err != nil {
			return fmt.Errorf("expire schedule %q: %w", cfg.ExpireSchedule, err)
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	e.Use(echoMw.Recover())
	e.Use(echoMw.RequestID())
	e.Use(middleware.RequestLogger(log))

	var ping func(ctx context.Context) error
	if db != nil {
		ping = db.PingContext
	}
	router.Register(e, router.Deps{
		Config:       cfg,
		Log:          log,
		Redis:        rdb,
		Tokens:       tokens,
		Ping:         ping,
		Reservations: handler.NewReservationHandler(reservations),
		Students:     handler.NewStudentHandler(students),
		Admins:       handler.NewAdminHandler(admins),
		Cron:         handler.NewCronHandler(expireJob),
	})

	addr := ":" + cfg.Port // Address string with port
	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "store", cfg.StoreDriver, "timezone", cfg.Timezone)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	return nil
}

// openStore returns the configured store. db is nil for the memory driver.
func openStore(ctx context.Context, cfg config.Config, clk *clock.Clock, roster model.Roster, log *logger.Logger) (repository.Store, *sql.DB, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(clk.Location()), nil, nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection to %s: %w", cfg.DBHost, err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("schema migration: %w", err)
	}
	if err := database.SeedSeats(ctx, db, roster); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("seat seeding: %w", err)
	}
	return repository.NewMySQLStore(db, clk.Location()), db, nil
}
