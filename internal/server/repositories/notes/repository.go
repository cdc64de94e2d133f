package notes

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Repository stores notes. Every method that addresses a single note takes
// the owner id as well; a note owned by someone else is reported exactly
// like a missing one, with common.ErrorNotFound.
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]*models.Note, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	Update(ctx context.Context, note *models.Note) (*models.Note, error)
	Delete(ctx context.Context, id, userID int64) error
}
