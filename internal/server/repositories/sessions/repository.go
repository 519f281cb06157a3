// Package sessions persists login sessions.
//
// Repositories store and return raw records; deciding whether a record is
// still active is left to the caller, which owns the clock.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
)

// Repository stores sessions by ID.
type Repository interface {
	// Save stores s, replacing any record with the same ID.
	Save(ctx context.Context, s *models.Session) error
	// Get returns the record or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Delete removes the record; deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes every record with ExpiresAt <= now and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	// List returns all stored records.
	List(ctx context.Context) ([]*models.Session, error)
}
