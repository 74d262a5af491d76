// Package service holds the reservation lifecycle engine and the roster and
// admin services around it. Expected failures come back as *Error values
// with a Kind; only store and infrastructure failures become InternalError.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindInvalidDuration
	KindAuthFailed
	KindDuplicateDailyReservation
	KindSeatConflict
	KindSeatUnavailable
	KindExtensionLimitReached
	KindOutOfBounds
	KindNotFound
	KindStudentExists
	KindActiveReservationExists
)

var kindNames = [...]string{
	KindInternal:                  "InternalError",
	KindInvalidInput:              "InvalidInput",
	KindInvalidDuration:           "InvalidDuration",
	KindAuthFailed:                "AuthFailed",
	KindDuplicateDailyReservation: "DuplicateDailyReservation",
	KindSeatConflict:              "SeatConflict",
	KindSeatUnavailable:           "SeatUnavailable",
	KindExtensionLimitReached:     "ExtensionLimitReached",
	KindOutOfBounds:               "OutOfBounds",
	KindNotFound:                  "NotFound",
	KindStudentExists:             "StudentExists",
	KindActiveReservationExists:   "ActiveReservationExists",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is returned by every service operation. Message is safe to show to
// a caller; Err carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind, so errors.Is(err, ErrSeatConflict)
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the Kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidInput              = newError(KindInvalidInput, "invalid input")
	ErrInvalidDuration           = newError(KindInvalidDuration, "invalid duration")
	ErrAuthFailed                = newError(KindAuthFailed, "invalid credentials")
	ErrDuplicateDailyReservation = newError(KindDuplicateDailyReservation, "a reservation for today already exists")
	ErrSeatConflict              = newError(KindSeatConflict, "seat is already reserved for part of that time")
	ErrSeatUnavailable           = newError(KindSeatUnavailable, "seat is not bookable")
	ErrExtensionLimitReached     = newError(KindExtensionLimitReached, "extension limit reached")
	ErrOutOfBounds               = newError(KindOutOfBounds, "hours are outside the reservable window")
	ErrNotFound                  = newError(KindNotFound, "not found")
	ErrStudentExists             = newError(KindStudentExists, "student already registered")
	ErrActiveReservationExists   = newError(KindActiveReservationExists, "student has an active reservation")
)
