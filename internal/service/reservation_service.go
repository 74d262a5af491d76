package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/lab-seat-reservation/internal/clock"
	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
	"github.com/iliyamo/lab-seat-reservation/internal/queue"
	"github.com/iliyamo/lab-seat-reservation/internal/repository"
)

// Reservation limits.
const (
	MinDurationHours = 1
	MaxDurationHours = 4
	MinExtendHours   = 1
	MaxExtendHours   = 3
)

// CredentialVerifier checks a plaintext secret against a stored hash.
type CredentialVerifier interface {
	Verify(plain, hash string) bool
}

// Credentials identify a student on every reservation call.
type Credentials struct {
	StudentID string
	Password  string
}

func (c Credentials) complete() bool {
	return strings.TrimSpace(c.StudentID) != "" && c.Password != ""
}

// CreateInput is a reservation request for today.
type CreateInput struct {
	Credentials
	SeatID    int
	StartHour int
	EndHour   int
}

// ExtendInput asks to push the end of the caller's ACTIVE reservation.
type ExtendInput struct {
	Credentials
	ExtendHours int
}

// SweepResult reports what one expiry sweep changed.
type SweepResult struct {
	RefDate      string                `json:"ref_date"`
	CurrentHour  int                   `json:"current_hour"`
	ExpiredCount int                   `json:"expired_count"`
	Details      []model.ExpiredDetail `json:"expired_reservations"`
}

// SeatSchedule is one seat's timeline for today.
type SeatSchedule struct {
	SeatID        int                 `json:"seat_id"`
	RefDate       string              `json:"ref_date"`
	Reservations  []model.Reservation `json:"reservations"`
	ReservedSlots []int               `json:"reserved_slots"`
}

// DayOverview lists today's ACTIVE reservations.
type DayOverview struct {
	RefDate           string                      `json:"ref_date"`
	TotalReservations int                         `json:"total_reservations"`
	BySeat            map[int][]model.Reservation `json:"reservations_by_seat"`
	All               []model.Reservation         `json:"all_reservations"`
}

// Seat board states.
const (
	SeatAvailable = "available"
	SeatOccupied  = "occupied"
	SeatFixed     = "fixed"
)

// SeatStatus is one tile of the seat board.
type SeatStatus struct {
	SeatID           int    `json:"seat_id"`
	Room             string `json:"room"`
	Status           string `json:"status"`
	RemainingMinutes int    `json:"remaining_minutes,omitempty"`
}

// ReservationService is the reservation lifecycle engine.
type ReservationService interface {
	Create(ctx context.Context, in CreateInput) (*model.Reservation, error)
	Extend(ctx context.Context, in ExtendInput) (*model.Reservation, error)
	Checkout(ctx context.Context, creds Credentials) (*model.Reservation, error)
	ExpireSweep(ctx context.Context, day time.Time, currentHour int) (*SweepResult, error)

	SeatSchedule(ctx context.Context, seatID int) (*SeatSchedule, error)
	DayOverview(ctx context.Context) (*DayOverview, error)
	SeatBoard(ctx context.Context) ([]SeatStatus, error)
}

type reservationService struct {
	store     repository.Store
	clock     *clock.Clock
	roster    model.Roster
	verifier  CredentialVerifier
	publisher EventPublisher
	log       *logger.Logger
}

// NewReservationService wires the engine. A nil publisher disables events.
func NewReservationService(store repository.Store, clk *clock.Clock, roster model.Roster,
	verifier CredentialVerifier, publisher EventPublisher, log *logger.Logger) ReservationService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &reservationService{
		store:     store,
		clock:     clk,
		roster:    roster,
		verifier:  verifier,
		publisher: publisher,
		log:       log,
	}
}

// authenticate resolves the student. Unknown ids and wrong passwords both
// come back as ErrAuthFailed.
func (s *reservationService) authenticate(ctx context.Context, creds Credentials) (*model.Student, error) {
	st, err := s.store.FindStudentByStudentID(ctx, creds.StudentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAuthFailed
	}
	if err != nil {
		return nil, s.storeFailure("find student", err)
	}
	if !s.verifier.Verify(creds.Password, st.PasswordHash) {
		return nil, ErrAuthFailed
	}
	return st, nil
}

// storeFailure logs the cause and hides it behind an InternalError.
func (s *reservationService) storeFailure(op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	s.log.Error("reservation store failure", "op", op, "error", err)
	return internal(err)
}

func (s *reservationService) publish(ctx context.Context, typ string, r model.Reservation, at time.Time) {
	ev := queue.NewReservationEvent(typ, r, at)
	if err := s.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("publish reservation event failed", "type", typ, "reservation_id", r.ID, "error", err)
	}
}

func (s *reservationService) Create(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	if !in.complete() || in.SeatID == 0 || in.StartHour == 0 || in.EndHour == 0 {
		return nil, ErrInvalidInput
	}
	if d := in.EndHour - in.StartHour + 1; d < MinDurationHours || d > MaxDurationHours {
		return nil, ErrInvalidDuration
	}
	seat, ok := s.roster.Lookup(in.SeatID)
	if !ok {
		return nil, ErrInvalidInput
	}
	if !seat.Bookable {
		return nil, ErrSeatUnavailable
	}

	st, err := s.authenticate(ctx, in.Credentials)
	if err != nil {
		return nil, err
	}

	snap := s.clock.Snapshot()
	if in.StartHour < clock.MinReservableHour || in.EndHour > clock.LastHour ||
		!clock.IsReservable(in.StartHour, snap.CurrentHour) {
		return nil, ErrOutOfBounds
	}

	res := &model.Reservation{
		UserID:    st.ID,
		SeatID:    in.SeatID,
		RefDate:   snap.Today,
		StartHour: in.StartHour,
		EndHour:   in.EndHour,
		Status:    model.StatusActive,
	}
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockStudent(ctx, st.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAuthFailed
			}
			return err
		}
		if err := tx.LockSeat(ctx, in.SeatID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidInput
			}
			return err
		}

		open, err := tx.HasOpenReservationOnDay(ctx, st.ID, snap.Today)
		if err != nil {
			return err
		}
		if open {
			return ErrDuplicateDailyReservation
		}

		existing, err := tx.ListBySeatAndDay(ctx, in.SeatID, snap.Today, model.StatusActive, 0)
		if err != nil {
			return err
		}
		if HasConflict(existing, in.StartHour, in.EndHour, 0) {
			return ErrSeatConflict
		}

		if err := tx.CreateReservation(ctx, res); err != nil {
			if errors.Is(err, repository.ErrDuplicateDaily) {
				return ErrDuplicateDailyReservation
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.storeFailure("create reservation", err)
	}

	s.log.Info("reservation created",
		"reservation_id", res.ID, "student_id", res.StudentID, "seat_id", res.SeatID,
		"start_hour", res.StartHour, "end_hour", res.EndHour)
	s.publish(ctx, queue.TypeCreated, *res, snap.Now)
	return res, nil
}

func (s *reservationService) Extend(ctx context.Context, in ExtendInput) (*model.Reservation, error) {
	if !in.complete() {
		return nil, ErrInvalidInput
	}
	if in.ExtendHours < MinExtendHours || in.ExtendHours > MaxExtendHours {
		return nil, ErrInvalidDuration
	}
	st, err := s.authenticate(ctx, in.Credentials)
	if err != nil {
		return nil, err
	}

	snap := s.clock.Snapshot()
	var updated *model.Reservation
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockStudent(ctx, st.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAuthFailed
			}
			return err
		}
		cur, err := tx.FindActiveByUser(ctx, st.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if cur.ExtensionCount >= model.MaxExtensions {
			return ErrExtensionLimitReached
		}

		newEnd := cur.EndHour + in.ExtendHours
		if err := tx.LockSeat(ctx, cur.SeatID); err != nil {
			return err
		}
		existing, err := tx.ListBySeatAndDay(ctx, cur.SeatID, cur.RefDate, model.StatusActive, cur.ID)
		if err != nil {
			return err
		}
		if HasConflict(existing, cur.EndHour+1, newEnd, cur.ID) {
			return ErrSeatConflict
		}
		if newEnd > clock.LastHour {
			return ErrOutOfBounds
		}

		count := cur.ExtensionCount + 1
		updated, err = tx.UpdateReservation(ctx, cur.ID, repository.ReservationPatch{
			EndHour:        &newEnd,
			ExtendedAt:     &snap.Now,
			ExtensionCount: &count,
		})
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, s.storeFailure("extend reservation", err)
	}

	s.log.Info("reservation extended",
		"reservation_id", updated.ID, "student_id", updated.StudentID,
		"end_hour", updated.EndHour, "extension_count", updated.ExtensionCount)
	s.publish(ctx, queue.TypeExtended, *updated, snap.Now)
	return updated, nil
}

// ClassifyCheckout decides the terminal status of a checkout made at
// currentHour: CANCELLED before the window starts, EXPIRED otherwise.
func ClassifyCheckout(currentHour, startHour, endHour int) model.Status {
	if currentHour < startHour {
		return model.StatusCancelled
	}
	return model.StatusExpired
}

func (s *reservationService) Checkout(ctx context.Context, creds Credentials) (*model.Reservation, error) {
	if !creds.complete() {
		return nil, ErrInvalidInput
	}
	st, err := s.authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}

	snap := s.clock.Snapshot()
	var updated *model.Reservation
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.LockStudent(ctx, st.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAuthFailed
			}
			return err
		}
		cur, err := tx.FindActiveByUser(ctx, st.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		status := ClassifyCheckout(snap.CurrentHour, cur.StartHour, cur.EndHour)
		updated, err = tx.UpdateReservation(ctx, cur.ID, repository.ReservationPatch{
			Status:     &status,
			CheckoutAt: &snap.Now,
		})
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, s.storeFailure("checkout reservation", err)
	}

	typ := queue.TypeCheckedOut
	if updated.Status == model.StatusCancelled {
		typ = queue.TypeCancelled
	}
	s.log.Info("reservation finalised",
		"reservation_id", updated.ID, "student_id", updated.StudentID,
		"status", updated.Status.String(), "current_hour", snap.CurrentHour)
	s.publish(ctx, typ, *updated, snap.Now)
	return updated, nil
}

// ExpireSweep expires every ACTIVE reservation of day that was never checked
// out and whose end hour is before currentHour. checkout_at stays NULL on
// swept rows, which is how they are told apart from user checkouts.
func (s *reservationService) ExpireSweep(ctx context.Context, day time.Time, currentHour int) (*SweepResult, error) {
	day = clock.DateIn(day, s.clock.Location())
	var (
		matched []model.Reservation
		changed int64
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		matched, err = tx.ListExpirable(ctx, day, currentHour)
		if err != nil || len(matched) == 0 {
			return err
		}
		ids := make([]uint64, len(matched))
		for i, r := range matched {
			ids[i] = r.ID
		}
		changed, err = tx.BulkExpire(ctx, ids)
		return err
	})
	if err != nil {
		return nil, s.storeFailure("expire sweep", err)
	}

	result := &SweepResult{
		RefDate:      day.Format(clock.DateLayout),
		CurrentHour:  currentHour,
		ExpiredCount: int(changed),
		Details:      make([]model.ExpiredDetail, 0, len(matched)),
	}
	now := s.clock.Now()
	for _, r := range matched {
		result.Details = append(result.Details, model.DetailOf(r))
		r.Status = model.StatusExpired
		s.publish(ctx, queue.TypeExpired, r, now)
	}
	if changed > 0 {
		s.log.Info("expired reservations", "day", day.Format(clock.DateLayout),
			"current_hour", currentHour, "count", changed)
	}
	return result, nil
}

func (s *reservationService) SeatSchedule(ctx context.Context, seatID int) (*SeatSchedule, error) {
	if _, ok := s.roster.Lookup(seatID); !ok {
		return nil, ErrInvalidInput
	}
	today := s.clock.Today()
	list, err := s.store.ListByDay(ctx, repository.DayQuery{Day: today, SeatID: seatID, IncludeCheckedOut: true})
	if err != nil {
		return nil, s.storeFailure("seat schedule", err)
	}
	slots := make([][]int, 0, len(list))
	for _, r := range list {
		slots = append(slots, clock.SlotsFor(r.StartHour, r.EndHour))
	}
	return &SeatSchedule{
		SeatID:        seatID,
		RefDate:       today.Format(clock.DateLayout),
		Reservations:  list,
		ReservedSlots: clock.MergeSlots(slots...),
	}, nil
}

func (s *reservationService) DayOverview(ctx context.Context) (*DayOverview, error) {
	today := s.clock.Today()
	list, err := s.store.ListByDay(ctx, repository.DayQuery{Day: today})
	if err != nil {
		return nil, s.storeFailure("day overview", err)
	}
	bySeat := make(map[int][]model.Reservation)
	for _, r := range list {
		bySeat[r.SeatID] = append(bySeat[r.SeatID], r)
	}
	return &DayOverview{
		RefDate:           today.Format(clock.DateLayout),
		TotalReservations: len(list),
		BySeat:            bySeat,
		All:               list,
	}, nil
}

// SeatBoard reports every seat as fixed, occupied (an ACTIVE reservation
// not checked out covers the current hour) or available.
func (s *reservationService) SeatBoard(ctx context.Context) ([]SeatStatus, error) {
	snap := s.clock.Snapshot()
	list, err := s.store.ListByDay(ctx, repository.DayQuery{Day: snap.Today})
	if err != nil {
		return nil, s.storeFailure("seat board", err)
	}
	seats := s.roster.Seats()
	board := make([]SeatStatus, len(seats))
	index := make(map[int]int, len(seats))
	for i, seat := range seats {
		status := SeatAvailable
		if !seat.Bookable {
			status = SeatFixed
		}
		board[i] = SeatStatus{SeatID: seat.ID, Room: seat.Room, Status: status}
		index[seat.ID] = i
	}
	for _, r := range list {
		i, ok := index[r.SeatID]
		if !ok || board[i].Status == SeatFixed || r.CheckoutAt != nil {
			continue
		}
		if snap.CurrentHour < r.StartHour || snap.CurrentHour > r.EndHour {
			continue
		}
		board[i].Status = SeatOccupied
		board[i].RemainingMinutes = clock.RemainingMinutes(r.EndHour, snap.CurrentHour, snap.CurrentMinute)
	}
	return board, nil
}
