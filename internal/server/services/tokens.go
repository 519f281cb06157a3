// Package services contains server-side business logic on top of the
// repositories: encrypted token namespaces, session lifecycle, user
// authentication and per-user secrets.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/cryptox"
	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/tokens"
)

// TokenStore is one encrypted token namespace. Values are sealed with the
// namespace cipher before they reach the repository.
type TokenStore struct {
	namespace string
	repo      tokens.Repository
	cipher    *cryptox.Cipher
}

// NewTokenStore binds a namespace repository to its cipher.
func NewTokenStore(namespace string, repo tokens.Repository, c *cryptox.Cipher) *TokenStore {
	return &TokenStore{namespace: namespace, repo: repo, cipher: c}
}

// Namespace returns the name of the namespace.
func (s *TokenStore) Namespace() string {
	return s.namespace
}

// Exists reports whether some record holds candidate as its value.
//
// The record is found through the keyed lookup hash and then confirmed by
// decrypting it and comparing in constant time.
func (s *TokenStore) Exists(ctx context.Context, candidate string) (bool, error) {
	rec, err := s.repo.GetByLookup(ctx, s.cipher.Lookup(candidate))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}

	plain, err := s.cipher.Decrypt(rec.Ciphertext, rec.IV, rec.AuthTag)
	if err != nil {
		return false, fmt.Errorf("token %q in %s: %w", rec.Name, s.namespace, err)
	}

	return subtle.ConstantTimeCompare([]byte(plain), []byte(candidate)) == 1, nil
}

// Create seals value and stores it under name. A taken name yields
// common.ErrorTokenAlreadyExists.
func (s *TokenStore) Create(ctx context.Context, name, value string) (*models.Token, error) {
	sealed, err := s.cipher.Encrypt(value)
	if err != nil {
		return nil, err
	}

	t := &models.Token{
		Name:       name,
		Ciphertext: sealed.Ciphertext,
		IV:         sealed.IV,
		AuthTag:    sealed.AuthTag,
		Lookup:     s.cipher.Lookup(value),
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns the decrypted value stored under name.
//
// A missing record yields common.ErrorNotFound; a record that fails to
// decrypt yields common.ErrorAuthenticationFailure.
func (s *TokenStore) Get(ctx context.Context, name string) (string, error) {
	rec, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return "", err
	}

	return s.cipher.Decrypt(rec.Ciphertext, rec.IV, rec.AuthTag)
}

// BackfillLookups computes the lookup hash of records stored without one,
// so tokens written before lookups existed still pass Exists. Records that
// fail to decrypt are left alone and counted in skipped.
func (s *TokenStore) BackfillLookups(ctx context.Context) (updated, skipped int, err error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, rec := range list {
		if rec.Lookup != "" {
			continue
		}

		plain, err := s.cipher.Decrypt(rec.Ciphertext, rec.IV, rec.AuthTag)
		if err != nil {
			skipped++
			continue
		}

		if err := s.repo.SetLookup(ctx, rec.Name, s.cipher.Lookup(plain)); err != nil {
			return updated, skipped, fmt.Errorf("token %q in %s: %w", rec.Name, s.namespace, err)
		}
		updated++
	}

	return updated, skipped, nil
}

// List returns all records in sealed form.
func (s *TokenStore) List(ctx context.Context) ([]*models.Token, error) {
	return s.repo.List(ctx)
}
