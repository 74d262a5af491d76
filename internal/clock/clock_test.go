package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func TestSnapshot_UsesLabTimezone(t *testing.T) {
	loc := seoul(t)
	// 2026-10-18 23:30 UTC is already the 19th in Seoul.
	utc := time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC)
	c := New(loc, 0, func() time.Time { return utc })

	snap := c.Snapshot()
	assert.Equal(t, 8, snap.CurrentHour)
	assert.Equal(t, 30, snap.CurrentMinute)
	assert.Equal(t, "2026-10-19", snap.Today.Format(DateLayout))
	assert.Equal(t, loc, snap.Today.Location())
	assert.True(t, snap.Now.Equal(utc))
}

func TestSnapshot_OffsetOnlyShiftsDecisionHour(t *testing.T) {
	loc := seoul(t)
	now := time.Date(2026, 10, 18, 10, 15, 0, 0, loc)
	c := New(loc, 3, func() time.Time { return now })

	snap := c.Snapshot()
	assert.Equal(t, 13, snap.CurrentHour)
	assert.Equal(t, 15, snap.CurrentMinute)
	assert.True(t, snap.Now.Equal(now))
	assert.Equal(t, "2026-10-18", snap.Today.Format(DateLayout))
	assert.Equal(t, 3, c.OffsetHours())
	assert.Equal(t, 13, c.CurrentHour())
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil, 0, nil)
	assert.Equal(t, time.UTC, c.Location())
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)
}

func TestLoad_UnknownTimezone(t *testing.T) {
	_, err := Load("Mars/Olympus", 0)
	assert.Error(t, err)
}

func TestDateIn_KeepsCalendarDate(t *testing.T) {
	loc := seoul(t)
	stored := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	got := DateIn(stored, loc)
	assert.Equal(t, "2026-10-18", got.Format(DateLayout))
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 0, got.Hour())
}

func TestParseDate(t *testing.T) {
	loc := seoul(t)
	d, err := ParseDate("2026-10-18", loc)
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2026, 10, 18, 0, 0, 0, 0, loc)))

	_, err = ParseDate("18/10/2026", loc)
	assert.Error(t, err)
}

func TestSnapshot_SweepHourDoesNotWrap(t *testing.T) {
	loc := seoul(t)
	now := time.Date(2026, 10, 18, 21, 0, 0, 0, loc)
	c := New(loc, 5, func() time.Time { return now })

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.CurrentHour, "decision hour wraps past midnight")
	assert.Equal(t, 26, snap.SweepHour)
	assert.Equal(t, "2026-10-18", snap.Today.Format(DateLayout))

	plain := New(loc, 0, func() time.Time { return now }).Snapshot()
	assert.Equal(t, plain.CurrentHour, plain.SweepHour)
}
