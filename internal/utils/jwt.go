package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleAdmin is the only role carried by session tokens.
const RoleAdmin = "ADMIN"

// ErrInvalidToken covers every reason a presented token is refused.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed JWT together with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// AdminClaims are the claims of an admin session token. Subject holds the
// admin id and ID a random jti.
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AdminID parses the numeric subject.
func (c *AdminClaims) AdminID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// TokenManager issues and validates short-lived HS256 admin tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager signing with secret. ttlMin <= 0 falls
// back to one hour.
func NewTokenManager(secret string, ttlMin int) *TokenManager {
	if ttlMin <= 0 {
		ttlMin = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMin) * time.Minute, now: time.Now}
}

// WithClock replaces the time source. Tests use it to mint expired tokens.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

// TTL returns the token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// IssueAdminToken signs a session token for the given admin.
func (m *TokenManager) IssueAdminToken(adminID uint64, username string) (AccessToken, error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)
	claims := AdminClaims{
		Username: username,
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(adminID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAdminToken validates signature, algorithm, expiry and role.
func (m *TokenManager) ParseAdminToken(raw string) (*AdminClaims, error) {
	var claims AdminClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	if _, err := claims.AdminID(); err != nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
