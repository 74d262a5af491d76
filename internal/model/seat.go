package model

import "sort"

// Seat is a physical seat in the lab. Fixed seats are permanently assigned
// and never bookable.
type Seat struct {
	ID       int    `json:"id"`
	Room     string `json:"room"`
	Bookable bool   `json:"bookable"`
}

// Rooms and the last seat of the first room.
const (
	RoomMain     = "901"
	RoomAnnex    = "907"
	lastMainSeat = 12
)

// DefaultSeatCount and DefaultFixedSeats describe the lab as installed.
var (
	DefaultSeatCount  = 17
	DefaultFixedSeats = []int{6, 12, 13}
)

// Roster is the read-only seat list. The zero value has no seats.
type Roster struct {
	seats map[int]Seat
}

// NewRoster numbers seats 1..count; seats up to 12 sit in room 901 and the
// rest in 907. Ids listed in fixed are marked unbookable.
func NewRoster(count int, fixed []int) Roster {
	isFixed := make(map[int]bool, len(fixed))
	for _, id := range fixed {
		isFixed[id] = true
	}
	seats := make(map[int]Seat, count)
	for id := 1; id <= count; id++ {
		room := RoomMain
		if id > lastMainSeat {
			room = RoomAnnex
		}
		seats[id] = Seat{ID: id, Room: room, Bookable: !isFixed[id]}
	}
	return Roster{seats: seats}
}

// DefaultRoster is the installed lab layout.
func DefaultRoster() Roster { return NewRoster(DefaultSeatCount, DefaultFixedSeats) }

// Lookup returns the seat with id.
func (r Roster) Lookup(id int) (Seat, bool) {
	s, ok := r.seats[id]
	return s, ok
}

// IsBookable reports whether id exists and is not fixed.
func (r Roster) IsBookable(id int) bool {
	s, ok := r.seats[id]
	return ok && s.Bookable
}

// Seats returns all seats ordered by id.
func (r Roster) Seats() []Seat {
	out := make([]Seat, 0, len(r.seats))
	for _, s := range r.seats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
