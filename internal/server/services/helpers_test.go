package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/gophnotes/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLiteEnv(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	db, dialect, err := repomanager.OpenDB(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", sanitize(t.Name())))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := repomanager.NewRepositoryManager(dialect)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	return db, m
}

func sanitize(name string) string {
	out := []rune(name)
	for i, r := range out {
		if r == '/' || r == ' ' {
			out[i] = '_'
		}
	}
	return string(out)
}

type fakeUsersRepo struct {
	getOut *models.Account
	getErr error

	createOut *models.Account
	createErr error

	calls int
}

func (f *fakeUsersRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.calls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	a.ID = 1
	return a, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.Account, error) {
	f.calls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
}

func (m *fakeRepoManager) Dialect() dbx.Dialect                           { return dbx.Postgres }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository         { return m.u }
func (m *fakeRepoManager) Notes(db dbx.DBTX) notes.Repository             { return nil }
func (m *fakeRepoManager) Attachments(db dbx.DBTX) attachments.Repository { return nil }

type fakeIssuer struct {
	token string
	err   error
}

func (f *fakeIssuer) Issue(a *models.Account) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return f.token, time.Unix(1700000000, 0), nil
}

// countingHasher records how often Verify runs.
type countingHasher struct {
	mu       sync.Mutex
	inner    auth.PasswordHasher
	verifies int
}

func (h *countingHasher) Hash(p string) (string, error) { return h.inner.Hash(p) }

func (h *countingHasher) Verify(p, s string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.inner.Verify(p, s)
}

type fakeStore struct {
	mu         sync.Mutex
	deleted    []string
	deleteErr  error
	presignErr error
}

func (f *fakeStore) PresignPut(ctx context.Context, key string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "http://store/put/" + key, nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "http://store/get/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

var errDBDown = errors.New("dial tcp 10.0.0.5:5432: connection refused")
