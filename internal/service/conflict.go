package service

import "github.com/iliyamo/lab-seat-reservation/internal/model"

// Overlaps reports whether the inclusive candidate range [start, end]
// intersects the inclusive existing range [exStart, exEnd]: the candidate
// starts inside it, ends inside it, or contains it.
func Overlaps(start, end, exStart, exEnd int) bool {
	startsInside := start >= exStart && start <= exEnd
	endsInside := end >= exStart && end <= exEnd
	contains := start <= exStart && end >= exEnd
	return startsInside || endsInside || contains
}

// HasConflict reports whether [start, end] overlaps any ACTIVE reservation
// in existing other than excludeID (zero excludes nothing).
func HasConflict(existing []model.Reservation, start, end int, excludeID uint64) bool {
	for _, r := range existing {
		if r.Status != model.StatusActive {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if Overlaps(start, end, r.StartHour, r.EndHour) {
			return true
		}
	}
	return false
}
