// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/lab-seat-reservation/internal/clock"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
)

// DefaultQueue is the queue reservation events are routed to when none is
// configured.
const DefaultQueue = "reservation.events"

// Event types, one per committed lifecycle transition.
const (
	TypeCreated    = "reservation.created"
	TypeExtended   = "reservation.extended"
	TypeCheckedOut = "reservation.checked_out"
	TypeCancelled  = "reservation.cancelled"
	TypeExpired    = "reservation.expired"
)

// ReservationEvent is published after a reservation changes state. It
// carries enough for an audit trail without querying the database.
type ReservationEvent struct {
	EventID        string `json:"event_id"`
	Type           string `json:"type"`
	ReservationID  uint64 `json:"reservation_id"`
	StudentID      string `json:"student_id"`
	SeatID         int    `json:"seat_id"`
	RefDate        string `json:"ref_date"`
	StartHour      int    `json:"start_hour"`
	EndHour        int    `json:"end_hour"`
	ExtensionCount int    `json:"extension_count"`
	Status         string `json:"status"`
	OccurredAt     string `json:"occurred_at"`
}

// NewReservationEvent snapshots r under a fresh event id.
func NewReservationEvent(typ string, r model.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		EventID:        uuid.NewString(),
		Type:           typ,
		ReservationID:  r.ID,
		StudentID:      r.StudentID,
		SeatID:         r.SeatID,
		RefDate:        r.RefDate.Format(clock.DateLayout),
		StartHour:      r.StartHour,
		EndHour:        r.EndHour,
		ExtensionCount: r.ExtensionCount,
		Status:         r.Status.String(),
		OccurredAt:     at.Format(time.RFC3339),
	}
}
