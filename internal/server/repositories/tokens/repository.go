// Package tokens persists encrypted token records, one store per namespace.
package tokens

import (
	"context"

	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
)

// Repository stores tokens of a single namespace.
//
// Names are unique: Create reports common.ErrorTokenAlreadyExists for a
// taken name. Lookups report common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, t *models.Token) error
	GetByName(ctx context.Context, name string) (*models.Token, error)
	// GetByLookup returns a record whose Lookup equals lookup.
	GetByLookup(ctx context.Context, lookup string) (*models.Token, error)
	// List returns all records ordered by name.
	List(ctx context.Context) ([]*models.Token, error)
	// SetLookup replaces the lookup hash of the named record.
	SetLookup(ctx context.Context, name, lookup string) error
}
