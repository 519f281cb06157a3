package httpapi

import (
	"context"

	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
)

// TokenNamespace is an encrypted token store as seen by the token API.
type TokenNamespace interface {
	Exists(ctx context.Context, candidate string) (bool, error)
	Create(ctx context.Context, name, value string) (*models.Token, error)
	Get(ctx context.Context, name string) (string, error)
}

// AuthService is the user and session logic used by the session API.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*models.User, *models.Session, error)
	Login(ctx context.Context, username, password string) (*models.User, *models.Session, error)
	ValidateSession(ctx context.Context, sessionID string) (*models.User, error)
	Logout(ctx context.Context, sessionID string) error
}

// SecretService is the per-user secret logic used by the session API.
type SecretService interface {
	CreateSecret(ctx context.Context, userID, key, value string) (*models.Secret, error)
	GetSecret(ctx context.Context, userID, key string) (*models.Secret, error)
	ListSecrets(ctx context.Context, userID string) ([]*models.Secret, error)
}
