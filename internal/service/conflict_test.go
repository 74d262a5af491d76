package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/lab-seat-reservation/internal/model"
)

func TestOverlaps(t *testing.T) {
	// existing reservation covers 12:00-13:59
	cases := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"ends inside", 10, 12, true},
		{"starts inside", 13, 15, true},
		{"contains", 11, 14, true},
		{"inside", 12, 12, true},
		{"identical", 12, 13, true},
		{"before", 9, 11, false},
		{"after", 14, 16, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.start, tc.end, 12, 13))
		})
	}
}

func TestHasConflict(t *testing.T) {
	existing := []model.Reservation{
		{ID: 1, StartHour: 10, EndHour: 11, Status: model.StatusActive},
		{ID: 2, StartHour: 14, EndHour: 15, Status: model.StatusExpired},
		{ID: 3, StartHour: 18, EndHour: 19, Status: model.StatusCancelled},
	}
	assert.True(t, HasConflict(existing, 11, 12, 0))
	assert.False(t, HasConflict(existing, 11, 12, 1), "own reservation is excluded")
	assert.False(t, HasConflict(existing, 14, 15, 0), "expired rows never conflict")
	assert.False(t, HasConflict(existing, 18, 19, 0), "cancelled rows never conflict")
	assert.False(t, HasConflict(nil, 9, 24, 0))
}

func TestClassifyCheckout(t *testing.T) {
	assert.Equal(t, model.StatusCancelled, ClassifyCheckout(10, 12, 13))
	assert.Equal(t, model.StatusExpired, ClassifyCheckout(12, 12, 13))
	assert.Equal(t, model.StatusExpired, ClassifyCheckout(13, 12, 13))
	assert.Equal(t, model.StatusExpired, ClassifyCheckout(20, 12, 13))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindSeatConflict, KindOf(ErrSeatConflict))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
	assert.Equal(t, "DuplicateDailyReservation", KindDuplicateDailyReservation.String())

	wrapped := &Error{Kind: KindInvalidInput, Message: "student id must contain digits only"}
	assert.ErrorIs(t, wrapped, ErrInvalidInput)
	assert.NotErrorIs(t, wrapped, ErrNotFound)

	in := internal(assert.AnError)
	assert.ErrorIs(t, in, assert.AnError)
	assert.Contains(t, in.Error(), "InternalError")
}
