package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/lab-seat-reservation/internal/logger"
	"github.com/iliyamo/lab-seat-reservation/internal/repository"
	"github.com/iliyamo/lab-seat-reservation/internal/utils"
)

// TokenIssuer signs admin session tokens.
type TokenIssuer interface {
	IssueAdminToken(adminID uint64, username string) (utils.AccessToken, error)
}

// AdminSession is returned by a successful login.
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

// AdminService authenticates administrators. Roster calls then present the
// issued token instead of the password.
type AdminService interface {
	Login(ctx context.Context, username, password string) (*AdminSession, error)
	// SeedAdmin creates the account when it does not exist yet and reports
	// whether it did.
	SeedAdmin(ctx context.Context, username, password string) (bool, error)
}

type adminService struct {
	store    repository.AdminStore
	hasher   Hasher
	verifier CredentialVerifier
	tokens   TokenIssuer
	log      *logger.Logger
}

func NewAdminService(store repository.AdminStore, hasher Hasher, verifier CredentialVerifier,
	tokens TokenIssuer, log *logger.Logger) AdminService {
	if log == nil {
		log = logger.Discard()
	}
	return &adminService{store: store, hasher: hasher, verifier: verifier, tokens: tokens, log: log}
}

func (s *adminService) Login(ctx context.Context, username, password string) (*AdminSession, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	admin, err := s.store.FindAdminByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAuthFailed
	}
	if err != nil {
		s.log.Error("find admin failed", "error", err)
		return nil, internal(err)
	}
	if !s.verifier.Verify(password, admin.PasswordHash) {
		s.log.Warn("admin login rejected", "username", username)
		return nil, ErrAuthFailed
	}
	tok, err := s.tokens.IssueAdminToken(admin.ID, admin.Username)
	if err != nil {
		s.log.Error("issue admin token failed", "error", err)
		return nil, internal(err)
	}
	s.log.Info("admin logged in", "username", admin.Username)
	return &AdminSession{Token: tok.Token, ExpiresAt: tok.Exp, Username: admin.Username}, nil
}

func (s *adminService) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if len(username) < MinUsernameLength {
		return false, &Error{Kind: KindInvalidInput, Message: "admin username must be at least 3 characters"}
	}
	if len(password) < MinPasswordLength {
		return false, &Error{Kind: KindInvalidInput, Message: "admin password must be at least 4 characters"}
	}
	_, err := s.store.FindAdminByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, internal(err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, internal(err)
	}
	if _, err := s.store.CreateAdmin(ctx, username, hash); err != nil {
		if errors.Is(err, repository.ErrAdminExists) {
			return false, nil
		}
		return false, internal(err)
	}
	s.log.Info("admin account seeded", "username", username)
	return true, nil
}
