package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/cryptox"
	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/secrets"
	"github.com/google/uuid"
)

// SecretService manages per-user secrets. A key is unique per user.
// Values are sealed with cipher before they reach the repository and
// returned decrypted.
type SecretService struct {
	repo   secrets.Repository
	cipher *cryptox.Cipher
}

func NewSecretService(repo secrets.Repository, c *cryptox.Cipher) *SecretService {
	return &SecretService{repo: repo, cipher: c}
}

// CreateSecret stores a new secret. An existing (userID, key) pair yields
// common.ErrorDuplicateKey.
func (s *SecretService) CreateSecret(ctx context.Context, userID, key, value string) (*models.Secret, error) {
	if userID == "" || key == "" {
		return nil, common.ErrorValidation
	}

	_, err := s.repo.Get(ctx, userID, key)
	switch {
	case err == nil:
		return nil, common.ErrorDuplicateKey
	case !errors.Is(err, common.ErrorNotFound):
		return nil, err
	}

	sealed, err := s.cipher.Encrypt(value)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Create(ctx, &models.Secret{
		ID:      uuid.NewString(),
		UserID:  userID,
		Key:     key,
		Value:   sealed.Ciphertext,
		IV:      sealed.IV,
		AuthTag: sealed.AuthTag,
	})
	if err != nil {
		return nil, err
	}

	out := *stored
	out.Value = value
	return &out, nil
}

// GetSecret returns the decrypted secret or common.ErrorNotFound.
func (s *SecretService) GetSecret(ctx context.Context, userID, key string) (*models.Secret, error) {
	stored, err := s.repo.Get(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	return s.open(stored)
}

// ListSecrets returns all secrets of userID ordered by creation time.
func (s *SecretService) ListSecrets(ctx context.Context, userID string) ([]*models.Secret, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Secret, 0, len(list))
	for _, stored := range list {
		secret, err := s.open(stored)
		if err != nil {
			return nil, err
		}
		result = append(result, secret)
	}
	return result, nil
}

// open decrypts a stored secret. Rows without an IV predate sealing and
// are returned unchanged.
func (s *SecretService) open(stored *models.Secret) (*models.Secret, error) {
	out := *stored
	if out.IV == "" {
		return &out, nil
	}

	plain, err := s.cipher.Decrypt(stored.Value, stored.IV, stored.AuthTag)
	if err != nil {
		return nil, fmt.Errorf("secret %q: %w", stored.Key, err)
	}
	out.Value = plain
	return &out, nil
}
