package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the lifecycle state of a reservation. ACTIVE is the only
// non-terminal state; EXPIRED and CANCELLED never change again.
type Status uint8

const (
	StatusActive Status = iota + 1
	StatusExpired
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusActive:    "ACTIVE",
	StatusExpired:   "EXPIRED",
	StatusCancelled: "CANCELLED",
}

// ParseStatus converts the stored/wire name into a Status.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown reservation status %q", s)
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool { _, ok := statusNames[s]; return ok }

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool { return s == StatusExpired || s == StatusCancelled }

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid reservation status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Value stores the status as its name in the reservations.status ENUM.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid reservation status %d", uint8(s))
	}
	return s.String(), nil
}

// Scan reads reservations.status.
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
}

// Reservation is one student's hold on one seat for an hour range of one day.
//
// Fields:
//  ID             – reservations.id
//  UserID         – owning student's users.id (immutable)
//  StudentID      – owning student's natural id, joined for responses
//  SeatID         – seat from the roster (immutable)
//  RefDate        – reference day at midnight in the lab timezone (immutable)
//  StartHour      – first hour, inclusive (immutable)
//  EndHour        – last hour, inclusive; grows with extensions
//  Status         – lifecycle state
//  CheckoutAt     – set by checkout/cancel; nil after an automatic sweep
//  ExtensionCount – 0..2
//  ExtendedAt     – time of the latest extension
type Reservation struct {
	ID             uint64     `json:"id"`
	UserID         uint64     `json:"-"`
	StudentID      string     `json:"student_id"`
	SeatID         int        `json:"seat_id"`
	RefDate        time.Time  `json:"-"`
	StartHour      int        `json:"start_hour"`
	EndHour        int        `json:"end_hour"`
	Status         Status     `json:"status"`
	CheckoutAt     *time.Time `json:"checkout_at"`
	ExtensionCount int        `json:"extension_count"`
	ExtendedAt     *time.Time `json:"extended_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MaxExtensions caps how many times a reservation may be extended.
const MaxExtensions = 2

// MarshalJSON renders RefDate as a plain date.
func (r Reservation) MarshalJSON() ([]byte, error) {
	type plain Reservation
	return json.Marshal(struct {
		plain
		RefDate string `json:"ref_date"`
	}{plain(r), r.RefDate.Format("2006-01-02")})
}

// Duration is the number of hours covered by the inclusive range.
func (r Reservation) Duration() int { return r.EndHour - r.StartHour + 1 }

// ExpiredDetail is the sweep's per-reservation report line.
type ExpiredDetail struct {
	ID             uint64 `json:"id"`
	SeatID         int    `json:"seat_id"`
	StudentID      string `json:"student_id"`
	TimeRange      string `json:"time_range"`
	ExtensionCount int    `json:"extension_count"`
}

// DetailOf builds the sweep report line for r.
func DetailOf(r Reservation) ExpiredDetail {
	return ExpiredDetail{
		ID:             r.ID,
		SeatID:         r.SeatID,
		StudentID:      r.StudentID,
		TimeRange:      fmt.Sprintf("%d:00-%d:00", r.StartHour, r.EndHour),
		ExtensionCount: r.ExtensionCount,
	}
}
