// Package services contains server-side business logic. This file implements
// AccountService, which registers accounts and exchanges credentials for
// session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
)

// MinPasswordLength is the minimum number of characters of a new password.
const MinPasswordLength = 6

var (
	ErrCredentialsRequired = fmt.Errorf("%w: Username and password are required", common.ErrorValidation)
	ErrPasswordTooShort    = fmt.Errorf("%w: Password must be at least %d characters long", common.ErrorValidation, MinPasswordLength)
)

// SessionIssuer mints session tokens for an account.
type SessionIssuer interface {
	Issue(account *models.Account) (string, time.Time, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   models.PublicAccount
}

// AccountService provides the credential operations:
//   - Register: create an account with a hashed password
//   - Login: verify credentials and issue a session token
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	issuer      SessionIssuer
	logger      logging.Logger
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountService wires an AccountService.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	issuer SessionIssuer, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		issuer:      issuer,
		logger:      logger.With("module", "accounts"),
		now:         time.Now,
	}
}

// Register creates an account. Errors are common.ErrorValidation (wrapped
// with a user-facing message), common.ErrorAlreadyExists or
// common.ErrorInternal; store details are logged, never returned.
func (s *AccountService) Register(ctx context.Context, username, password string) (*models.Account, error) {
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, auth.ErrPasswordTooLong
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByLogin(ctx, username)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "account lookup failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	account, err := repo.Create(ctx, &models.Account{
		UserName:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		// Lost the race against a concurrent registration of the same name.
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "account insert failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "account registered", "user_id", account.ID, "username", account.UserName)
	return account, nil
}

// Login checks the credentials and issues a session. Unknown usernames and
// wrong passwords both yield common.ErrorUnauthorized.
func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	repo := s.repomanager.Users(s.db)
	account, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Spend the same bcrypt work as for a real account.
			_, _ = s.hasher.Verify(password, s.dummySecret())
			s.logger.Info(ctx, "login failed", "username", username, "reason", "unknown user")
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "account lookup failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "password verification failed", "user_id", account.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		s.logger.Info(ctx, "login failed", "username", username, "reason", "wrong password")
		return nil, common.ErrorUnauthorized
	}

	token, expiresAt, err := s.issuer.Issue(account)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "user_id", account.ID, "error", err)
		return nil, common.ErrorInternal
	}

	return &Session{Token: token, ExpiresAt: expiresAt, Account: account.Public()}, nil
}

func (s *AccountService) dummySecret() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("gophnotes-timing-equalizer")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
