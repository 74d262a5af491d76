// Package clock supplies "now" in the lab's fixed timezone and the hourly
// slot model shared by the reservation engine and the seat board.
//
// The clock carries an hour offset used on staging machines to pretend the
// day is further along than it is. The offset is fixed when the clock is
// built; it only shifts the hours used for decisions (CurrentHour and
// SweepHour). Stored timestamps and the reference day always come from the
// real time.
package clock

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a reference day.
const DateLayout = "2006-01-02"

// Clock is safe for concurrent use; it holds no mutable state.
type Clock struct {
	loc    *time.Location
	offset int
	now    func() time.Time
}

// New builds a Clock for loc with the given hour offset. A nil nowFn means
// time.Now.
func New(loc *time.Location, offsetHours int, nowFn func() time.Time) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Clock{loc: loc, offset: offsetHours, now: nowFn}
}

// Load resolves a timezone name such as "Asia/Seoul" and builds a Clock on
// the system time.
func Load(tz string, offsetHours int) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return New(loc, offsetHours, nil), nil
}

// Location returns the lab timezone.
func (c *Clock) Location() *time.Location { return c.loc }

// OffsetHours returns the configured staging offset.
func (c *Clock) OffsetHours() int { return c.offset }

// Now returns the real current time in the lab timezone.
func (c *Clock) Now() time.Time { return c.now().In(c.loc) }

// Today returns midnight of the real current day in the lab timezone.
func (c *Clock) Today() time.Time { return StartOfDay(c.Now()) }

// CurrentHour returns the offset-adjusted hour of day.
func (c *Clock) CurrentHour() int { return c.Snapshot().CurrentHour }

// Snapshot reads the time once. An operation should take one snapshot and
// use it throughout so every decision it makes agrees on "now".
func (c *Clock) Snapshot() Snapshot {
	now := c.Now()
	adjusted := now.Add(time.Duration(c.offset) * time.Hour)
	return Snapshot{
		Now:           now,
		Today:         StartOfDay(now),
		CurrentHour:   adjusted.Hour(),
		CurrentMinute: adjusted.Minute(),
		SweepHour:     now.Hour() + c.offset,
	}
}

// Snapshot is a single reading of the clock.
type Snapshot struct {
	Now           time.Time // real time, used for stored timestamps
	Today         time.Time // reference day of reservations made now
	CurrentHour   int       // offset-adjusted hour used for decisions
	CurrentMinute int
	// SweepHour is the real hour plus the offset without wrapping at
	// midnight, so a late offset still counts today's rows as overdue.
	SweepHour int
}

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateIn re-anchors the calendar date of t in loc. MySQL DATE columns come
// back as UTC midnight and must be moved to the lab timezone unchanged.
func DateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseDate parses a DateLayout string as a day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}
