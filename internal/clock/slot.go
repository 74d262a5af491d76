package clock

import "sort"

// Slots are indexed 0..15 and cover hours 9..24. A reservation [start, end]
// occupies start:00 through end:59.
const (
	FirstSlotHour     = 9
	SlotCount         = 16
	LastHour          = 24
	MinReservableHour = 8
)

// SlotIndex maps an hour to its slot index.
func SlotIndex(hour int) int { return hour - FirstSlotHour }

// SlotHour maps a slot index to its hour.
func SlotHour(index int) int { return index + FirstSlotHour }

// IsReservable reports whether hour may still be booked today given the
// offset-adjusted current hour.
func IsReservable(hour, currentHour int) bool {
	return hour >= MinReservableHour && hour >= currentHour
}

// SlotsFor returns the slot indexes covered by the inclusive range
// [start, end], dropping any that fall outside 0..15.
func SlotsFor(start, end int) []int {
	out := make([]int, 0, end-start+1)
	for h := start; h <= end; h++ {
		if i := SlotIndex(h); i >= 0 && i < SlotCount {
			out = append(out, i)
		}
	}
	return out
}

// MergeSlots returns the sorted union of the given slot lists.
func MergeSlots(lists ...[]int) []int {
	seen := make(map[int]struct{})
	for _, l := range lists {
		for _, i := range l {
			seen[i] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// RemainingMinutes is the time left until end:59 rolls over, floored at 0.
func RemainingMinutes(endHour, currentHour, currentMinute int) int {
	left := (endHour+1)*60 - (currentHour*60 + currentMinute)
	if left < 0 {
		return 0
	}
	return left
}
