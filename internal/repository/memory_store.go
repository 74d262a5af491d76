package repository

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/lab-seat-reservation/internal/model"
)

// MemoryStore keeps everything in process memory. A single mutex is held
// for the whole of WithTx, so transactions are serialised; a failed
// transaction restores the maps it started with.
type MemoryStore struct {
	mu  sync.Mutex
	loc *time.Location
	now func() time.Time

	nextUserID  uint64
	nextAdminID uint64
	nextResID   uint64

	students     map[uint64]model.Student
	byStudentID  map[string]uint64
	admins       map[string]model.Admin
	reservations map[uint64]model.Reservation
}

// NewMemoryStore returns an empty store. Timestamps it assigns are taken
// from time.Now in loc.
func NewMemoryStore(loc *time.Location) *MemoryStore {
	if loc == nil {
		loc = time.UTC
	}
	return &MemoryStore{
		loc:          loc,
		now:          time.Now,
		students:     map[uint64]model.Student{},
		byStudentID:  map[string]uint64{},
		admins:       map[string]model.Admin{},
		reservations: map[uint64]model.Reservation{},
	}
}

func (s *MemoryStore) stamp() time.Time { return s.now().In(s.loc) }

func (s *MemoryStore) CreateStudent(_ context.Context, studentID, passwordHash string) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	studentID = strings.TrimSpace(studentID)
	if _, ok := s.byStudentID[studentID]; ok {
		return nil, ErrStudentExists
	}
	s.nextUserID++
	st := model.Student{ID: s.nextUserID, StudentID: studentID, PasswordHash: passwordHash, CreatedAt: s.stamp()}
	s.students[st.ID] = st
	s.byStudentID[studentID] = st.ID
	return &st, nil
}

func (s *MemoryStore) FindStudentByStudentID(_ context.Context, studentID string) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byStudentID[strings.TrimSpace(studentID)]
	if !ok {
		return nil, ErrNotFound
	}
	st := s.students[id]
	return &st, nil
}

func (s *MemoryStore) FindStudentByID(_ context.Context, id uint64) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &st, nil
}

func (s *MemoryStore) ListStudents(_ context.Context) ([]model.StudentSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[uint64]int, len(s.students))
	for _, r := range s.reservations {
		counts[r.UserID]++
	}
	out := make([]model.StudentSummary, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, model.StudentSummary{
			ID:               st.ID,
			StudentID:        st.StudentID,
			CreatedAt:        st.CreatedAt,
			ReservationCount: counts[st.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) CreateAdmin(_ context.Context, username, passwordHash string) (*model.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username = strings.TrimSpace(username)
	if _, ok := s.admins[username]; ok {
		return nil, ErrAdminExists
	}
	s.nextAdminID++
	a := model.Admin{ID: s.nextAdminID, Username: username, PasswordHash: passwordHash, CreatedAt: s.stamp()}
	s.admins[username] = a
	return &a, nil
}

func (s *MemoryStore) FindAdminByUsername(_ context.Context, username string) (*model.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[strings.TrimSpace(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

// WithTx must not be re-entered from fn, and fn must not call the
// non-transactional methods of the same store.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	students := maps.Clone(s.students)
	byStudentID := maps.Clone(s.byStudentID)
	reservations := maps.Clone(s.reservations)
	nextResID := s.nextResID
	if err := fn(ctx, &memoryTx{s: s}); err != nil {
		s.students = students
		s.byStudentID = byStudentID
		s.reservations = reservations
		s.nextResID = nextResID
		return err
	}
	return nil
}

func (s *MemoryStore) ListByDay(_ context.Context, q DayQuery) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range s.reservations {
		if q.matches(r) {
			out = append(out, s.withStudentID(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeatID != out[j].SeatID {
			return out[i].SeatID < out[j].SeatID
		}
		return out[i].StartHour < out[j].StartHour
	})
	return out, nil
}

// withStudentID fills the joined natural id. Callers hold mu.
func (s *MemoryStore) withStudentID(r model.Reservation) model.Reservation {
	r.StudentID = s.students[r.UserID].StudentID
	return r
}

// memoryTx runs under MemoryStore.mu, which makes the explicit row locks
// no-ops beyond an existence check.
type memoryTx struct{ s *MemoryStore }

func (t *memoryTx) LockStudent(_ context.Context, userID uint64) error {
	if _, ok := t.s.students[userID]; !ok {
		return ErrNotFound
	}
	return nil
}

func (t *memoryTx) LockSeat(_ context.Context, _ int) error { return nil }

func (t *memoryTx) HasOpenReservationOnDay(_ context.Context, userID uint64, day time.Time) (bool, error) {
	for _, r := range t.s.reservations {
		if r.UserID == userID && r.RefDate.Equal(day) && r.Status != model.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) FindActiveByUser(_ context.Context, userID uint64) (*model.Reservation, error) {
	var found *model.Reservation
	for _, r := range t.s.reservations {
		if r.UserID != userID || r.Status != model.StatusActive {
			continue
		}
		if found == nil || r.RefDate.After(found.RefDate) || (r.RefDate.Equal(found.RefDate) && r.ID > found.ID) {
			cp := t.s.withStudentID(r)
			found = &cp
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (t *memoryTx) ListBySeatAndDay(_ context.Context, seatID int, day time.Time, status model.Status, excludeID uint64) ([]model.Reservation, error) {
	out := []model.Reservation{}
	for _, r := range t.s.reservations {
		if r.SeatID == seatID && r.RefDate.Equal(day) && r.Status == status && r.ID != excludeID {
			out = append(out, t.s.withStudentID(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartHour < out[j].StartHour })
	return out, nil
}

func (t *memoryTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
	if _, ok := t.s.students[res.UserID]; !ok {
		return ErrNotFound
	}
	if res.Status != model.StatusCancelled {
		open, _ := t.HasOpenReservationOnDay(ctx, res.UserID, res.RefDate)
		if open {
			return ErrDuplicateDaily
		}
	}
	t.s.nextResID++
	stored := *res
	stored.ID = t.s.nextResID
	stored.CreatedAt = t.s.stamp()
	t.s.reservations[stored.ID] = stored
	*res = t.s.withStudentID(stored)
	return nil
}

func (t *memoryTx) UpdateReservation(_ context.Context, id uint64, p ReservationPatch) (*model.Reservation, error) {
	r, ok := t.s.reservations[id]
	if !ok || r.Status != model.StatusActive {
		return nil, ErrNotFound
	}
	if p.EndHour != nil {
		r.EndHour = *p.EndHour
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.CheckoutAt != nil {
		at := p.CheckoutAt.In(t.s.loc)
		r.CheckoutAt = &at
	}
	if p.ExtendedAt != nil {
		at := p.ExtendedAt.In(t.s.loc)
		r.ExtendedAt = &at
	}
	if p.ExtensionCount != nil {
		r.ExtensionCount = *p.ExtensionCount
	}
	t.s.reservations[id] = r
	out := t.s.withStudentID(r)
	return &out, nil
}

func (t *memoryTx) ListExpirable(_ context.Context, day time.Time, currentHour int) ([]model.Reservation, error) {
	out := []model.Reservation{}
	for _, r := range t.s.reservations {
		if r.RefDate.Equal(day) && r.Status == model.StatusActive && r.CheckoutAt == nil && r.EndHour < currentHour {
			out = append(out, t.s.withStudentID(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memoryTx) BulkExpire(_ context.Context, ids []uint64) (int64, error) {
	var n int64
	for _, id := range ids {
		r, ok := t.s.reservations[id]
		if !ok || r.Status != model.StatusActive {
			continue
		}
		r.Status = model.StatusExpired
		t.s.reservations[id] = r
		n++
	}
	return n, nil
}

func (t *memoryTx) DeleteStudent(_ context.Context, userID uint64) error {
	st, ok := t.s.students[userID]
	if !ok {
		return ErrNotFound
	}
	for id, r := range t.s.reservations {
		if r.UserID == userID {
			delete(t.s.reservations, id)
		}
	}
	delete(t.s.students, userID)
	delete(t.s.byStudentID, st.StudentID)
	return nil
}
