package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/cryptox"
	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// AuthService registers users, logs them in and resolves sessions back to
// users. Passwords are stored as argon2id hashes only.
type AuthService struct {
	users    users.Repository
	sessions *SessionStore

	// hash verified for unknown users so both login failures cost the same
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService constructs an AuthService.
func NewAuthService(u users.Repository, s *SessionStore) *AuthService {
	return &AuthService{users: u, sessions: s}
}

// Register creates a user and a first session for it.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, *models.Session, error) {
	if username == "" || password == "" {
		return nil, nil, common.ErrorValidation
	}

	_, err := s.users.GetUserByLogin(ctx, username)
	switch {
	case err == nil:
		return nil, nil, common.ErrorUsernameTaken
	case !errors.Is(err, common.ErrorNotFound):
		return nil, nil, err
	}

	user, err := s.createUser(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Login checks the credentials and opens a new session. An unknown user and
// a wrong password both yield common.ErrorUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, *models.Session, error) {
	user, err := s.users.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(password, s.fakeHash())
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, err
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stored hash for %s: %w", common.ErrorInternal, user.ID, err)
	}
	if !ok {
		return nil, nil, common.ErrorUnauthorized
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// ValidateSession resolves an active session to its user. Absent or
// expired sessions and sessions of vanished users yield common.ErrorNotFound.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.User, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return s.users.GetByID(ctx, session.UserID)
}

// Logout removes the session. It is idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.RemoveByID(ctx, sessionID)
}

// EnsureUser creates username with password unless it already exists.
// It reports whether a user was created.
func (s *AuthService) EnsureUser(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, common.ErrorValidation
	}

	_, err := s.users.GetUserByLogin(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, err
	}

	if _, err := s.createUser(ctx, username, password); err != nil {
		if errors.Is(err, common.ErrorUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return s.users.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		PasswordHash: hash,
	})
}

func (s *AuthService) fakeHash() string {
	s.dummyOnce.Do(func() {
		h, err := cryptox.HashPassword(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
