package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-seat-reservation/internal/repository"
	"github.com/iliyamo/lab-seat-reservation/internal/utils"
)

type stubIssuer struct {
	err error
}

func (s stubIssuer) IssueAdminToken(adminID uint64, username string) (utils.AccessToken, error) {
	if s.err != nil {
		return utils.AccessToken{}, s.err
	}
	return utils.AccessToken{Token: "tok-" + username, Exp: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}, nil
}

func TestSeedAdmin(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	svc := NewAdminService(store, plainHasher{}, plainHasher{}, stubIssuer{}, nil)
	ctx := context.Background()

	created, err := svc.SeedAdmin(ctx, "root", "toor")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.SeedAdmin(ctx, "root", "changed")
	require.NoError(t, err)
	assert.False(t, created, "seeding is idempotent")

	_, err = svc.SeedAdmin(ctx, "ab", "toor")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SeedAdmin(ctx, "admin", "abc")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdminLogin(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	svc := NewAdminService(store, plainHasher{}, plainHasher{}, stubIssuer{}, nil)
	ctx := context.Background()
	_, err := svc.SeedAdmin(ctx, "root", "toor")
	require.NoError(t, err)

	sess, err := svc.Login(ctx, "root", "toor")
	require.NoError(t, err)
	assert.Equal(t, "tok-root", sess.Token)
	assert.Equal(t, "root", sess.Username)
	assert.False(t, sess.ExpiresAt.IsZero())

	_, err = svc.Login(ctx, "root", "wrong")
	assert.ErrorIs(t, err, ErrAuthFailed)
	_, err = svc.Login(ctx, "ghost", "toor")
	assert.ErrorIs(t, err, ErrAuthFailed)
	_, err = svc.Login(ctx, "", "toor")
	assert.ErrorIs(t, err, ErrInvalidInput)

	broken := NewAdminService(store, plainHasher{}, plainHasher{}, stubIssuer{err: errors.New("no key")}, nil)
	_, err = broken.Login(ctx, "root", "toor")
	assert.Equal(t, KindInternal, KindOf(err))
}
