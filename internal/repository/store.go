package repository

import (
	"context"
	"time"

	"github.com/iliyamo/lab-seat-reservation/internal/model"
)

// StudentStore reads and writes the student roster.
type StudentStore interface {
	FindStudentByStudentID(ctx context.Context, studentID string) (*model.Student, error)
	FindStudentByID(ctx context.Context, id uint64) (*model.Student, error)
	ListStudents(ctx context.Context) ([]model.StudentSummary, error)
	CreateStudent(ctx context.Context, studentID, passwordHash string) (*model.Student, error)
}

// AdminStore reads and writes administrator accounts.
type AdminStore interface {
	FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	CreateAdmin(ctx context.Context, username, passwordHash string) (*model.Admin, error)
}

// ReservationStore runs atomic units of work and serves the read-only
// availability queries.
type ReservationStore interface {
	// WithTx runs fn in one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned as is.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	ListByDay(ctx context.Context, q DayQuery) ([]model.Reservation, error)
}

// Store is everything the service layer needs.
type Store interface {
	StudentStore
	AdminStore
	ReservationStore
}

// Tx is the set of operations available inside WithTx. Locks are held until
// the transaction ends. Callers take the student lock before the seat lock.
type Tx interface {
	LockStudent(ctx context.Context, userID uint64) error
	LockSeat(ctx context.Context, seatID int) error

	// HasOpenReservationOnDay reports whether the student owns any
	// reservation on day whose status is not CANCELLED.
	HasOpenReservationOnDay(ctx context.Context, userID uint64, day time.Time) (bool, error)
	// FindActiveByUser returns the student's ACTIVE reservation or ErrNotFound.
	FindActiveByUser(ctx context.Context, userID uint64) (*model.Reservation, error)
	// ListBySeatAndDay returns reservations on (seat, day) with the given
	// status, skipping excludeID when it is non-zero.
	ListBySeatAndDay(ctx context.Context, seatID int, day time.Time, status model.Status, excludeID uint64) ([]model.Reservation, error)

	CreateReservation(ctx context.Context, r *model.Reservation) error
	// UpdateReservation applies p to the reservation only while it is still
	// ACTIVE and returns the updated row; ErrNotFound otherwise.
	UpdateReservation(ctx context.Context, id uint64, p ReservationPatch) (*model.Reservation, error)

	// ListExpirable returns ACTIVE reservations on day with no checkout
	// timestamp whose end hour is before currentHour.
	ListExpirable(ctx context.Context, day time.Time, currentHour int) ([]model.Reservation, error)
	// BulkExpire moves the listed reservations to EXPIRED where they are
	// still ACTIVE and returns how many rows changed. checkout_at is left
	// untouched.
	BulkExpire(ctx context.Context, ids []uint64) (int64, error)

	DeleteStudent(ctx context.Context, userID uint64) error
}

// ReservationPatch lists the mutable columns. Nil fields are left alone.
type ReservationPatch struct {
	EndHour        *int
	Status         *model.Status
	CheckoutAt     *time.Time
	ExtendedAt     *time.Time
	ExtensionCount *int
}

// DayQuery selects reservations for the availability views.
type DayQuery struct {
	Day    time.Time
	SeatID int // 0 selects every seat

	// IncludeCheckedOut adds EXPIRED rows that were finalised by a checkout
	// (checkout_at set) to the ACTIVE rows.
	IncludeCheckedOut bool
}

// matches mirrors the WHERE clause the MySQL store builds for q.
func (q DayQuery) matches(r model.Reservation) bool {
	if !r.RefDate.Equal(q.Day) {
		return false
	}
	if q.SeatID != 0 && r.SeatID != q.SeatID {
		return false
	}
	if r.Status == model.StatusActive {
		return true
	}
	return q.IncludeCheckedOut && r.Status == model.StatusExpired && r.CheckoutAt != nil
}
