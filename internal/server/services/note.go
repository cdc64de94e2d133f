package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/storage"
)

var ErrNoteFieldsRequired = fmt.Errorf("%w: Title and description are required", common.ErrorValidation)

// NoteService exposes the notes of one principal at a time. A note that
// belongs to another account is indistinguishable from a missing one.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	logger      logging.Logger
	now         func() time.Time
}

// NewNoteService wires a NoteService. store may be nil when attachments are
// disabled.
func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, logger logging.Logger) *NoteService {
	return &NoteService{
		db:          db,
		repomanager: m,
		store:       store,
		logger:      logger.With("module", "notes"),
		now:         time.Now,
	}
}

func (s *NoteService) List(ctx context.Context, p auth.Principal) ([]*models.Note, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	notes, err := s.repomanager.Notes(s.db).ListByUser(ctx, p.ID)
	if err != nil {
		return nil, s.internal(ctx, "list notes", p, err)
	}
	return notes, nil
}

func (s *NoteService) Create(ctx context.Context, p auth.Principal, title, description string) (*models.Note, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := validateNote(title, description); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	note, err := s.repomanager.Notes(s.db).Create(ctx, &models.Note{
		UserID:      p.ID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, s.internal(ctx, "create note", p, err)
	}
	return note, nil
}

func (s *NoteService) Update(ctx context.Context, p auth.Principal, id int64, title, description string) (*models.Note, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := validateNote(title, description); err != nil {
		return nil, err
	}

	note, err := s.repomanager.Notes(s.db).Update(ctx, &models.Note{
		ID:          id,
		UserID:      p.ID,
		Title:       title,
		Description: description,
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "update note", p, err)
	}
	return note, nil
}

// Delete removes the note together with its attachment rows in one
// transaction, then drops the blobs. Blob removal failures are only logged.
func (s *NoteService) Delete(ctx context.Context, p auth.Principal, id int64) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}

	var keys []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		attRepo := s.repomanager.Attachments(tx)
		atts, err := attRepo.ListByNote(ctx, id, p.ID)
		if err != nil {
			return err
		}
		if _, err := attRepo.DeleteByNote(ctx, id, p.ID); err != nil {
			return err
		}
		if err := s.repomanager.Notes(tx).Delete(ctx, id, p.ID); err != nil {
			return err
		}
		for _, a := range atts {
			keys = append(keys, a.StorageKey)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.internal(ctx, "delete note", p, err)
	}

	if s.store != nil {
		for _, key := range keys {
			if err := s.store.Delete(ctx, key); err != nil {
				s.logger.Warn(ctx, "orphaned attachment blob", "key", key, "error", err)
			}
		}
	}
	return nil
}

func (s *NoteService) internal(ctx context.Context, op string, p auth.Principal, err error) error {
	s.logger.Error(ctx, op+" failed", "user_id", p.ID, "error", err)
	return common.ErrorInternal
}

func validateNote(title, description string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return ErrNoteFieldsRequired
	}
	return nil
}

// requirePrincipal rejects calls that reach a guarded service without an
// authenticated identity.
func requirePrincipal(p auth.Principal) error {
	if p.ID <= 0 {
		return common.ErrMissingToken
	}
	return nil
}
