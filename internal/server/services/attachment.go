package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/storage"
	"github.com/google/uuid"
)

var (
	ErrFileNameRequired = fmt.Errorf("%w: fileName is required", common.ErrorValidation)

	// ErrStorageDisabled is returned when no object store is configured.
	ErrStorageDisabled = errors.New("attachment storage is not configured")
)

// UploadTicket is handed to the client to PUT the attachment body.
type UploadTicket struct {
	Attachment *models.Attachment
	UploadURL  string
}

// AttachmentService issues presigned URLs for blobs attached to notes. The
// note must belong to the principal.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	logger      logging.Logger
	now         func() time.Time
	newKey      func(userID, noteID int64) string
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, logger logging.Logger) *AttachmentService {
	return &AttachmentService{
		db:          db,
		repomanager: m,
		store:       store,
		logger:      logger.With("module", "attachments"),
		now:         time.Now,
		newKey:      StorageKey,
	}
}

// StorageKey returns a fresh object key under the owner's prefix.
func StorageKey(userID, noteID int64) string {
	return fmt.Sprintf("users/%d/notes/%d/%v", userID, noteID, uuid.New())
}

// CreateUpload records a new attachment and returns a presigned PUT URL.
func (s *AttachmentService) CreateUpload(ctx context.Context, p auth.Principal, noteID int64, fileName string) (*UploadTicket, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	fileName = path.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, ErrFileNameRequired
	}
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	if _, err := s.repomanager.Notes(s.db).GetByID(ctx, noteID, p.ID); err != nil {
		return nil, s.mapErr(ctx, "load note", p, err)
	}

	key := s.newKey(p.ID, noteID)
	url, err := s.store.PresignPut(ctx, key)
	if err != nil {
		return nil, s.mapErr(ctx, "presign put", p, err)
	}

	a, err := s.repomanager.Attachments(s.db).Create(ctx, &models.Attachment{
		NoteID:     noteID,
		UserID:     p.ID,
		StorageKey: key,
		FileName:   fileName,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, s.mapErr(ctx, "create attachment", p, err)
	}

	return &UploadTicket{Attachment: a, UploadURL: url}, nil
}

// DownloadURL returns a presigned GET URL for an attachment of the note.
func (s *AttachmentService) DownloadURL(ctx context.Context, p auth.Principal, noteID, attachmentID int64) (string, error) {
	if err := requirePrincipal(p); err != nil {
		return "", err
	}
	if s.store == nil {
		return "", ErrStorageDisabled
	}

	a, err := s.repomanager.Attachments(s.db).GetByID(ctx, attachmentID, noteID, p.ID)
	if err != nil {
		return "", s.mapErr(ctx, "load attachment", p, err)
	}

	url, err := s.store.PresignGet(ctx, a.StorageKey)
	if err != nil {
		return "", s.mapErr(ctx, "presign get", p, err)
	}
	return url, nil
}

func (s *AttachmentService) mapErr(ctx context.Context, op string, p auth.Principal, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.logger.Error(ctx, op+" failed", "user_id", p.ID, "error", err)
	return common.ErrorInternal
}
