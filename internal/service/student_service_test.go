package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-seat-reservation/internal/repository"
)

func TestValidStudentID(t *testing.T) {
	assert.True(t, ValidStudentID("20231234"))
	assert.False(t, ValidStudentID(""))
	assert.False(t, ValidStudentID("2023-1234"))
	assert.False(t, ValidStudentID("abc"))
}

func TestRegister(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	svc := NewStudentService(store, plainHasher{}, nil)
	ctx := context.Background()

	st, err := svc.Register(ctx, " 20231234 ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "20231234", st.StudentID)
	assert.Equal(t, "h:secret", st.PasswordHash)

	_, err = svc.Register(ctx, "20231234", "other")
	assert.ErrorIs(t, err, ErrStudentExists)

	_, err = svc.AddStudent(ctx, "20231235", "abc")
	assert.ErrorIs(t, err, ErrInvalidInput, "password too short")
	_, err = svc.AddStudent(ctx, "s-1", "secret")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AddStudent(ctx, "", "secret")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewStudentService(store, plainHasher{fail: true}, nil).Register(ctx, "1", "secret")
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestListStudents(t *testing.T) {
	f := newFixture(t, 9, 0)
	svc := NewStudentService(f.store, plainHasher{}, nil)
	f.mustReserve(f.student("1"), 1, 10, 11)
	f.student("2")

	list, err := svc.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	counts := map[string]int{}
	for _, s := range list {
		counts[s.StudentID] = s.ReservationCount
	}
	assert.Equal(t, map[string]int{"1": 1, "2": 0}, counts)
}

func TestDeleteStudent(t *testing.T) {
	f := newFixture(t, 9, 0)
	svc := NewStudentService(f.store, plainHasher{}, nil)
	ctx := context.Background()
	alice := f.student("1")
	f.mustReserve(alice, 1, 10, 11)
	st, err := f.store.FindStudentByStudentID(ctx, "1")
	require.NoError(t, err)

	err = svc.DeleteStudent(ctx, st.ID)
	assert.ErrorIs(t, err, ErrActiveReservationExists)

	_, err = f.svc.Checkout(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteStudent(ctx, st.ID))

	_, err = f.store.FindStudentByStudentID(ctx, "1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	ov, err := f.svc.DayOverview(ctx)
	require.NoError(t, err)
	assert.Zero(t, ov.TotalReservations)

	assert.ErrorIs(t, svc.DeleteStudent(ctx, st.ID), ErrNotFound)
	assert.ErrorIs(t, svc.DeleteStudent(ctx, 0), ErrInvalidInput)
}
