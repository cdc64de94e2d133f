package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteEnv struct {
	notes *NoteService
	atts  *AttachmentService
	store *fakeStore
	alice auth.Principal
	bob   auth.Principal
}

func newNoteEnv(t *testing.T) *noteEnv {
	t.Helper()
	ctx := context.Background()
	db, m := newSQLiteEnv(t)

	mk := func(name string) auth.Principal {
		a, err := m.Users(db).Create(ctx, &models.Account{UserName: name, PasswordHash: "x", CreatedAt: time.Now().UTC()})
		require.NoError(t, err)
		return auth.Principal{ID: a.ID, Username: a.UserName}
	}

	store := &fakeStore{}
	return &noteEnv{
		notes: NewNoteService(db, m, store, logging.Nop()),
		atts:  NewAttachmentService(db, m, store, logging.Nop()),
		store: store,
		alice: mk("alice"),
		bob:   mk("bob"),
	}
}

func TestNotes_CRUD(t *testing.T) {
	ctx := context.Background()
	env := newNoteEnv(t)

	n, err := env.notes.Create(ctx, env.alice, "groceries", "milk")
	require.NoError(t, err)
	assert.Equal(t, env.alice.ID, n.UserID)

	list, err := env.notes.List(ctx, env.alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "groceries", list[0].Title)

	upd, err := env.notes.Update(ctx, env.alice, n.ID, "groceries", "milk, eggs")
	require.NoError(t, err)
	assert.Equal(t, "milk, eggs", upd.Description)

	require.NoError(t, env.notes.Delete(ctx, env.alice, n.ID))

	list, err = env.notes.List(ctx, env.alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotes_CrossOwnerLooksMissing(t *testing.T) {
	ctx := context.Background()
	env := newNoteEnv(t)

	n, err := env.notes.Create(ctx, env.alice, "t", "d")
	require.NoError(t, err)

	list, err := env.notes.List(ctx, env.bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, errForeign := env.notes.Update(ctx, env.bob, n.ID, "x", "y")
	_, errMissing := env.notes.Update(ctx, env.bob, n.ID+100, "x", "y")
	assert.ErrorIs(t, errForeign, common.ErrorNotFound)
	assert.Equal(t, errMissing, errForeign)

	assert.ErrorIs(t, env.notes.Delete(ctx, env.bob, n.ID), common.ErrorNotFound)
	assert.ErrorIs(t, env.notes.Delete(ctx, env.bob, n.ID+100), common.ErrorNotFound)

	// Alice's note is untouched.
	list, err = env.notes.List(ctx, env.alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t", list[0].Title)
}

func TestNotes_Validation(t *testing.T) {
	ctx := context.Background()
	env := newNoteEnv(t)

	_, err := env.notes.Create(ctx, env.alice, "", "d")
	assert.ErrorIs(t, err, ErrNoteFieldsRequired)
	_, err = env.notes.Create(ctx, env.alice, "t", "   ")
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = env.notes.Update(ctx, env.alice, 1, "", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestNotes_RequirePrincipal(t *testing.T) {
	ctx := context.Background()
	env := newNoteEnv(t)

	_, err := env.notes.List(ctx, auth.Principal{})
	assert.ErrorIs(t, err, common.ErrMissingToken)
	_, err = env.notes.Create(ctx, auth.Principal{}, "t", "d")
	assert.ErrorIs(t, err, common.ErrMissingToken)
	assert.ErrorIs(t, env.notes.Delete(ctx, auth.Principal{}, 1), common.ErrMissingToken)
}

func TestNotes_DeleteRemovesAttachments(t *testing.T) {
	ctx := context.Background()
	env := newNoteEnv(t)

	n, err := env.notes.Create(ctx, env.alice, "t", "d")
	require.NoError(t, err)

	t1, err := env.atts.CreateUpload(ctx, env.alice, n.ID, "a.txt")
	require.NoError(t, err)
	t2, err := env.atts.CreateUpload(ctx, env.alice, n.ID, "b.txt")
	require.NoError(t, err)

	env.store.deleteErr = errors.New("s3 unavailable")
	require.NoError(t, env.notes.Delete(ctx, env.alice, n.ID))

	assert.ElementsMatch(t, []string{t1.Attachment.StorageKey, t2.Attachment.StorageKey}, env.store.deleted)

	_, err = env.atts.DownloadURL(ctx, env.alice, n.ID, t1.Attachment.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestNotes_DeleteForeignKeepsAttachments(t *testing.T) {
	ctx := context.Background()
	env := newNoteEnv(t)

	n, err := env.notes.Create(ctx, env.alice, "t", "d")
	require.NoError(t, err)
	tk, err := env.atts.CreateUpload(ctx, env.alice, n.ID, "a.txt")
	require.NoError(t, err)

	assert.ErrorIs(t, env.notes.Delete(ctx, env.bob, n.ID), common.ErrorNotFound)
	assert.Empty(t, env.store.deleted)

	url, err := env.atts.DownloadURL(ctx, env.alice, n.ID, tk.Attachment.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://store/get/"+tk.Attachment.StorageKey, url)
}
