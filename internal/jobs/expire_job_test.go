package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-seat-reservation/internal/clock"
	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
	"github.com/iliyamo/lab-seat-reservation/internal/repository"
	"github.com/iliyamo/lab-seat-reservation/internal/service"
)

type sweepCall struct {
	day  string
	hour int
}

type mockSweeper struct {
	calls   []sweepCall
	expired map[string][]model.ExpiredDetail
	err     error
}

func (m *mockSweeper) ExpireSweep(_ context.Context, day time.Time, currentHour int) (*service.SweepResult, error) {
	ref := day.Format(clock.DateLayout)
	m.calls = append(m.calls, sweepCall{day: ref, hour: currentHour})
	if m.err != nil {
		return nil, m.err
	}
	details := append([]model.ExpiredDetail(nil), m.expired[ref]...)
	return &service.SweepResult{
		RefDate:      ref,
		CurrentHour:  currentHour,
		ExpiredCount: len(details),
		Details:      details,
	}, nil
}

func clockAt(t *testing.T, hour, offset int) *clock.Clock {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	now := time.Date(2026, 10, 18, hour, 5, 0, 0, loc)
	return clock.New(loc, offset, func() time.Time { return now })
}

func TestRunOnce_UsesClockSnapshot(t *testing.T) {
	sw := &mockSweeper{expired: map[string][]model.ExpiredDetail{
		"2026-10-18": {{ID: 1, SeatID: 2, StudentID: "1", TimeRange: "9:00-10:00"}},
	}}
	job := NewExpireJob(sw, clockAt(t, 14, 2), logger.Discard())

	res, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, sw.calls, 2)
	assert.Equal(t, sweepCall{day: "2026-10-17", hour: clock.LastHour + 1}, sw.calls[0])
	assert.Equal(t, sweepCall{day: "2026-10-18", hour: 16}, sw.calls[1], "offset applies to the sweep hour")
	assert.Equal(t, "2026-10-18", res.RefDate)
	assert.Equal(t, 1, res.ExpiredCount)
}

func TestRunOnce_OffsetPastMidnightDoesNotWrap(t *testing.T) {
	sw := &mockSweeper{}
	job := NewExpireJob(sw, clockAt(t, 21, 5), logger.Discard())

	_, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, sw.calls, 2)
	assert.Equal(t, sweepCall{day: "2026-10-18", hour: 26}, sw.calls[1])
}

func TestRunOnce_MergesPreviousDay(t *testing.T) {
	sw := &mockSweeper{expired: map[string][]model.ExpiredDetail{
		"2026-10-17": {{ID: 7, SeatID: 4, StudentID: "2021001", TimeRange: "20:00-23:59"}},
		"2026-10-18": {{ID: 9, SeatID: 5, StudentID: "2021002", TimeRange: "9:00-9:59"}},
	}}
	job := NewExpireJob(sw, clockAt(t, 11, 0), logger.Discard())

	res, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExpiredCount)
	require.Len(t, res.Details, 2)
	assert.Equal(t, uint64(7), res.Details[0].ID)
	assert.Equal(t, uint64(9), res.Details[1].ID)
}

func TestRunOnce_PropagatesError(t *testing.T) {
	sw := &mockSweeper{err: errors.New("db down")}
	job := NewExpireJob(sw, clockAt(t, 14, 0), logger.Discard())

	_, err := job.RunOnce(context.Background())
	assert.Error(t, err)

	assert.NotPanics(t, job.Run)
	assert.Len(t, sw.calls, 2, "each run stops at the first failed sweep")
}

// seedActive stores an ACTIVE reservation directly, bypassing the
// create-time hour checks.
func seedActive(t *testing.T, store *repository.MemoryStore, studentID string, seat int, day time.Time, start, end, extensions int) {
	t.Helper()
	ctx := context.Background()
	st, err := store.CreateStudent(ctx, studentID, "h:pw")
	require.NoError(t, err)
	err = store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.CreateReservation(ctx, &model.Reservation{
			UserID: st.ID, SeatID: seat, RefDate: day,
			StartHour: start, EndHour: end, Status: model.StatusActive, ExtensionCount: extensions,
		})
	})
	require.NoError(t, err)
}

func TestRunOnce_ExpiresThroughService(t *testing.T) {
	clk := clockAt(t, 21, 5)
	store := repository.NewMemoryStore(clk.Location())
	today := clk.Today()
	seedActive(t, store, "2021001", 1, today, 9, 12, 0)
	seedActive(t, store, "2021002", 2, today.AddDate(0, 0, -1), 20, 23, 1)
	svc := service.NewReservationService(store, clk, model.DefaultRoster(), nil, nil, logger.Discard())

	res, err := NewExpireJob(svc, clk, logger.Discard()).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 26, res.CurrentHour)
	assert.Equal(t, 2, res.ExpiredCount)

	again, err := NewExpireJob(svc, clk, logger.Discard()).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, again.ExpiredCount)
}

func TestSchedule(t *testing.T) {
	job := NewExpireJob(&mockSweeper{}, clockAt(t, 14, 0), logger.Discard())

	c, err := Schedule("*/5 * * * *", job, logger.Discard())
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, "Asia/Seoul", c.Location().String())

	_, err = Schedule("every tuesday", job, logger.Discard())
	assert.Error(t, err)
}
