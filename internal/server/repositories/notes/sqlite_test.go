package notes_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	db, dialect, err := repomanager.OpenDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := repomanager.NewRepositoryManager(dialect)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	return db, m
}

func createUser(t *testing.T, db *sql.DB, m repomanager.RepositoryManager, name string) int64 {
	t.Helper()
	a, err := m.Users(db).Create(context.Background(), &models.Account{UserName: name, PasswordHash: "x", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	return a.ID
}

func TestSQLite_OwnershipScoping(t *testing.T) {
	ctx := context.Background()
	db, m := setup(t)
	repo := m.Notes(db)

	alice := createUser(t, db, m, "alice")
	bob := createUser(t, db, m, "bob")

	now := time.Now().UTC().Truncate(time.Second)
	n, err := repo.Create(ctx, &models.Note{UserID: alice, Title: "t", Description: "d", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	require.NotZero(t, n.ID)

	list, err := repo.ListByUser(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.GetByID(ctx, n.ID, bob)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Update(ctx, &models.Note{ID: n.ID, UserID: bob, Title: "x", Description: "y", UpdatedAt: now})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	err = repo.Delete(ctx, n.ID, bob)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	got, err := repo.GetByID(ctx, n.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, "d", got.Description)

	later := now.Add(time.Minute)
	upd, err := repo.Update(ctx, &models.Note{ID: n.ID, UserID: alice, Title: "t2", Description: "d2", UpdatedAt: later})
	require.NoError(t, err)
	assert.True(t, upd.CreatedAt.Equal(now), "created_at %v want %v", upd.CreatedAt, now)

	list, err = repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t2", list[0].Title)

	require.NoError(t, repo.Delete(ctx, n.ID, alice))
	assert.ErrorIs(t, repo.Delete(ctx, n.ID, alice), common.ErrorNotFound)
}
