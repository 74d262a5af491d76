package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusNames(t *testing.T) {
	for _, st := range []Status{StatusActive, StatusExpired, StatusCancelled} {
		got, err := ParseStatus(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	_, err := ParseStatus("PENDING")
	assert.Error(t, err)
	assert.False(t, Status(0).Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusActive.Terminal())
	assert.True(t, StatusExpired.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestStatusScan(t *testing.T) {
	var s Status
	require.NoError(t, s.Scan([]byte("EXPIRED")))
	assert.Equal(t, StatusExpired, s)
	require.NoError(t, s.Scan("CANCELLED"))
	assert.Equal(t, StatusCancelled, s)
	assert.Error(t, s.Scan(42))

	v, err := StatusActive.Value()
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", v)
	_, err = Status(9).Value()
	assert.Error(t, err)
}

func TestReservationJSON(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	r := Reservation{
		ID:        7,
		UserID:    3,
		StudentID: "20231234",
		SeatID:    4,
		RefDate:   time.Date(2026, 10, 18, 0, 0, 0, 0, loc),
		StartHour: 11,
		EndHour:   13,
		Status:    StatusActive,
	}
	b, err := json.Marshal(r)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "2026-10-18", out["ref_date"])
	assert.Equal(t, "ACTIVE", out["status"])
	assert.Equal(t, "20231234", out["student_id"])
	assert.Nil(t, out["checkout_at"])
	assert.NotContains(t, out, "UserID")
	assert.Equal(t, 3, r.Duration())
}

func TestDetailOf(t *testing.T) {
	d := DetailOf(Reservation{ID: 1, SeatID: 2, StudentID: "1", StartHour: 9, EndHour: 10, ExtensionCount: 1})
	assert.Equal(t, "9:00-10:00", d.TimeRange)
	assert.Equal(t, 1, d.ExtensionCount)
}
