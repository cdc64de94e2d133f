package users

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Repository persists accounts. GetUserByLogin returns common.ErrorNotFound
// for an unknown username; Create returns common.ErrorAlreadyExists when the
// username is taken.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetUserByLogin(ctx context.Context, login string) (*models.Account, error)
}
