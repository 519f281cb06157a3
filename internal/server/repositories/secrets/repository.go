// Package secrets persists per-user key/value secrets.
package secrets

import (
	"context"

	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
)

// Repository stores secrets keyed by (UserID, Key).
//
// Create reports common.ErrorDuplicateKey when the pair exists, Get reports
// common.ErrorNotFound, ListByUser returns records ordered by CreatedAt.
type Repository interface {
	Create(ctx context.Context, secret *models.Secret) (*models.Secret, error)
	Get(ctx context.Context, userID, key string) (*models.Secret, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Secret, error)
}
