package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload: the standard registered claims plus
// the account identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// TokenVerifier resolves a raw session token into a Principal.
type TokenVerifier interface {
	Verify(raw string) (Principal, error)
}

// TokenManager mints and verifies HS256 session tokens. It holds no mutable
// state after construction and is safe for concurrent use.
type TokenManager struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// TokenOption configures a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewTokenManager creates a manager signing with secret; tokens expire
// validity after issuance.
func NewTokenManager(secret []byte, validity time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if validity <= 0 {
		return nil, fmt.Errorf("token validity must be positive, got %s", validity)
	}

	m := &TokenManager{
		secret:   secret,
		validity: validity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue returns a signed token for the account and its expiry time.
func (m *TokenManager) Issue(account *models.Account) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(account.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   account.ID,
		Username: account.UserName,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt.Truncate(time.Second), nil
}

// Verify checks signature, algorithm and expiry and returns the embedded
// principal. A token is rejected once now >= exp. Every failure wraps
// common.ErrInvalidToken; the wrapped cause is for server logs only.
func (m *TokenManager) Verify(raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, common.ErrMissingToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return Principal{}, common.ErrInvalidToken
	}
	if claims.UserID <= 0 || claims.Username == "" {
		return Principal{}, fmt.Errorf("%w: missing identity claims", common.ErrInvalidToken)
	}

	return Principal{ID: claims.UserID, Username: claims.Username}, nil
}
