package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/lab-seat-reservation/internal/clock"
	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/service"
)

// Sweeper is the part of the reservation service the job drives.
type Sweeper interface {
	ExpireSweep(ctx context.Context, day time.Time, currentHour int) (*service.SweepResult, error)
}

// ExpireJob expires overdue reservations of the current day.
type ExpireJob struct {
	sweeper Sweeper
	clock   *clock.Clock
	log     *logger.Logger
	timeout time.Duration
}

func NewExpireJob(sweeper Sweeper, clk *clock.Clock, log *logger.Logger) *ExpireJob {
	return &ExpireJob{sweeper: sweeper, clock: clk, log: log, timeout: 30 * time.Second}
}

// RunOnce sweeps today with the clock's unwrapped sweep hour. It first
// closes whatever is still ACTIVE from yesterday: rows ending at 23 or 24
// are never overdue on their own day.
func (j *ExpireJob) RunOnce(ctx context.Context) (*service.SweepResult, error) {
	snap := j.clock.Snapshot()
	yesterday := snap.Today.AddDate(0, 0, -1)
	j.log.Debug("running job: expire reservations", "day", snap.Today.Format(clock.DateLayout), "current_hour", snap.SweepHour)

	prev, err := j.sweeper.ExpireSweep(ctx, yesterday, clock.LastHour+1)
	if err != nil {
		j.log.Error("expire previous day failed", "day", yesterday.Format(clock.DateLayout), "error", err)
		return nil, err
	}
	res, err := j.sweeper.ExpireSweep(ctx, snap.Today, snap.SweepHour)
	if err != nil {
		j.log.Error("expire reservations failed", "error", err)
		return nil, err
	}
	if prev.ExpiredCount > 0 {
		j.log.Info("expired reservations left from previous day",
			"day", prev.RefDate, "count", prev.ExpiredCount)
		res.ExpiredCount += prev.ExpiredCount
		res.Details = append(prev.Details, res.Details...)
	}
	if res.ExpiredCount == 0 {
		j.log.Debug("no reservations to expire")
		return res, nil
	}
	for _, d := range res.Details {
		j.log.Info("reservation expired",
			"reservation_id", d.ID, "seat_id", d.SeatID, "student_id", d.StudentID,
			"time_range", d.TimeRange, "extension_count", d.ExtensionCount)
	}
	j.log.Info("expired reservations", "count", res.ExpiredCount)
	return res, nil
}

// Run implements cron.Job.
func (j *ExpireJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, _ = j.RunOnce(ctx)
}

// Schedule registers job on a new cron scheduler running in the lab
// timezone. Overlapping runs are skipped. The caller starts and stops it.
func Schedule(spec string, job *ExpireJob, log *logger.Logger) (*cron.Cron, error) {
	cl := cronLogger{log}
	c := cron.New(
		cron.WithLocation(job.clock.Location()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, err
	}
	return c, nil
}

// cronLogger adapts the slog wrapper to cron.Logger.
type cronLogger struct{ l *logger.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
