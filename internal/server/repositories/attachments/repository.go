package attachments

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error)
	GetByID(ctx context.Context, id, noteID, userID int64) (*models.Attachment, error)
	ListByNote(ctx context.Context, noteID, userID int64) ([]*models.Attachment, error)
	DeleteByNote(ctx context.Context, noteID, userID int64) (int64, error)
}
