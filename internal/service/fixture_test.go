package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-seat-reservation/internal/clock"
	"github.com/iliyamo/lab-seat-reservation/internal/model"
	"github.com/iliyamo/lab-seat-reservation/internal/queue"
	"github.com/iliyamo/lab-seat-reservation/internal/repository"
)

// plainHasher stores "h:"+secret so tests skip bcrypt.
type plainHasher struct{ fail bool }

func (h plainHasher) Hash(plain string) (string, error) {
	if h.fail {
		return "", errors.New("hasher down")
	}
	return "h:" + plain, nil
}

func (plainHasher) Verify(plain, hash string) bool { return hash == "h:"+plain }

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// fixture is a reservation engine on a memory store whose clock the test
// moves by hand.
type fixture struct {
	t     *testing.T
	loc   *time.Location
	now   time.Time
	mu    sync.Mutex
	store *repository.MemoryStore
	pub   *recordingPublisher
	svc   ReservationService
	clock *clock.Clock
}

func newFixture(t *testing.T, hour, minute int) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	f := &fixture{
		t:     t,
		loc:   loc,
		now:   time.Date(2026, 10, 18, hour, minute, 0, 0, loc),
		store: repository.NewMemoryStore(loc),
		pub:   &recordingPublisher{},
	}
	f.clock = clock.New(loc, 0, f.read)
	f.svc = NewReservationService(f.store, f.clock, model.DefaultRoster(), plainHasher{}, f.pub, nil)
	return f
}

func (f *fixture) read() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) setHour(hour, minute int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	y, m, d := f.now.Date()
	f.now = time.Date(y, m, d, hour, minute, 0, 0, f.loc)
}

func (f *fixture) today() time.Time {
	return clock.StartOfDay(f.read())
}

// student registers id with password "pw-"+id.
func (f *fixture) student(id string) Credentials {
	f.t.Helper()
	_, err := f.store.CreateStudent(context.Background(), id, "h:pw-"+id)
	require.NoError(f.t, err)
	return Credentials{StudentID: id, Password: "pw-" + id}
}

func (f *fixture) reserve(creds Credentials, seat, start, end int) (*model.Reservation, error) {
	return f.svc.Create(context.Background(), CreateInput{Credentials: creds, SeatID: seat, StartHour: start, EndHour: end})
}

func (f *fixture) mustReserve(creds Credentials, seat, start, end int) *model.Reservation {
	f.t.Helper()
	r, err := f.reserve(creds, seat, start, end)
	require.NoError(f.t, err)
	return r
}
