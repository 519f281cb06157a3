package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/sessions"
)

// SessionStore manages the session lifecycle: active until ExpiresAt,
// then expired (detected lazily on read) and finally removed.
type SessionStore struct {
	repo sessions.Repository
	ttl  time.Duration
	now  func() time.Time
}

// SessionStoreOption customizes a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

// NewSessionStore creates a store issuing sessions valid for ttl. A non-positive
// ttl falls back to common.DefaultSessionTTL.
func NewSessionStore(repo sessions.Repository, ttl time.Duration, opts ...SessionStoreOption) *SessionStore {
	if ttl <= 0 {
		ttl = common.DefaultSessionTTL
	}
	s := &SessionStore{repo: repo, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create sweeps expired sessions and then stores a new one for userID.
func (s *SessionStore) Create(ctx context.Context, userID string) (*models.Session, error) {
	if _, err := s.RemoveExpiredSessions(ctx); err != nil {
		return nil, err
	}

	id, err := common.MakeRandHexString(common.SessionIDSize)
	if err != nil {
		return nil, common.ErrorInternal
	}

	now := s.now()
	session := &models.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// FindByID returns the session if it is active. An expired record is removed
// and reported as common.ErrorNotFound, like an absent one.
func (s *SessionStore) FindByID(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, common.ErrorNotFound
	}

	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Expired(s.now()) {
		if err := s.repo.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, common.ErrorNotFound
	}

	return session, nil
}

// RemoveByID deletes the session. Removing an unknown id is not an error.
func (s *SessionStore) RemoveByID(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

// RemoveExpiredSessions deletes every session with ExpiresAt <= now and
// returns how many were removed.
func (s *SessionStore) RemoveExpiredSessions(ctx context.Context) (int, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

// List returns all stored sessions, including expired ones not yet swept.
func (s *SessionStore) List(ctx context.Context) ([]*models.Session, error) {
	return s.repo.List(ctx)
}
