// Package users persists registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
)

// Repository stores users. Create reports common.ErrorUsernameTaken when the
// username is already registered; lookups report common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
