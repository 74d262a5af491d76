// Command expire runs a single expiry sweep against the MySQL store and
// exits. It is meant for an external scheduler (system cron, Kubernetes
// CronJob) when the in-process schedule is disabled.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/lab-seat-reservation/internal/clock"
	"github.com/iliyamo/lab-seat-reservation/internal/config"
	"github.com/iliyamo/lab-seat-reservation/internal/database"
	"github.com/iliyamo/lab-seat-reservation/internal/jobs"
	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
	"github.com/iliyamo/lab-seat-reservation/internal/repository"
	"github.com/iliyamo/lab-seat-reservation/internal/service"
	"github.com/iliyamo/lab-seat-reservation/internal/utils"
)

func main() {
	cfg, err := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "lab-seat-expire"})
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}
	if err := run(cfg, log); err != nil {
		log.Fatal("expire failed", "error", err)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	if cfg.StoreDriver == config.DriverMemory {
		return errors.New("expire needs the mysql store")
	}
	clk, err := clock.Load(cfg.Timezone, cfg.DevTimeOffset)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer db.Close()

	var publisher service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		publisher = service.NewAMQPPublisher(cfg.RabbitURL, cfg.EventsQueue, log)
	}
	store := repository.NewMySQLStore(db, clk.Location())
	svc := service.NewReservationService(store, clk, model.NewRoster(cfg.SeatCount, cfg.FixedSeats),
		utils.NewBcrypt(cfg.BcryptCost), publisher, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	res, err := jobs.NewExpireJob(svc, clk, log).RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	log.Info("sweep done", "ref_date", res.RefDate, "current_hour", res.CurrentHour, "expired", res.ExpiredCount)
	return nil
}
