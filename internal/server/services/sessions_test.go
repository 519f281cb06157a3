package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/server/repositories/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(clock *fakeClock) *SessionStore {
	return NewSessionStore(sessions.NewMemoryRepository(), common.DefaultSessionTTL, WithClock(clock.Now))
}

func TestSessionStore_Create(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := newTestSessionStore(clock)

	a, err := s.Create(ctx, "u-1")
	require.NoError(t, err)
	b, err := s.Create(ctx, "u-1")
	require.NoError(t, err)

	assert.Len(t, a.ID, 2*common.SessionIDSize)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "u-1", a.UserID)
	assert.Equal(t, clock.Now(), a.CreatedAt)
	assert.Equal(t, clock.Now().Add(24*time.Hour), a.ExpiresAt)
}

func TestSessionStore_FindByIDLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := newTestSessionStore(clock)

	created, err := s.Create(ctx, "u-1")
	require.NoError(t, err)

	clock.Advance(24*time.Hour - time.Second)
	got, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	clock.Advance(time.Second)
	_, err = s.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "expired session must be removed on access")
}

func TestSessionStore_FindByIDUnknown(t *testing.T) {
	ctx := context.Background()
	s := newTestSessionStore(newFakeClock())

	_, err := s.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.FindByID(ctx, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSessionStore_CreateSweepsExpired(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := newTestSessionStore(clock)

	_, err := s.Create(ctx, "u-1")
	require.NoError(t, err)
	_, err = s.Create(ctx, "u-2")
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	fresh, err := s.Create(ctx, "u-3")
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fresh.ID, list[0].ID)
}

func TestSessionStore_RemoveByIDIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestSessionStore(newFakeClock())

	created, err := s.Create(ctx, "u-1")
	require.NoError(t, err)

	require.NoError(t, s.RemoveByID(ctx, created.ID))
	require.NoError(t, s.RemoveByID(ctx, created.ID))
	require.NoError(t, s.RemoveByID(ctx, "never-existed"))

	_, err = s.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSessionStore_RemoveExpiredSessions(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	repo := sessions.NewMemoryRepository()
	s := NewSessionStore(repo, time.Hour, WithClock(clock.Now))

	_, err := s.Create(ctx, "u-1")
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	keep, err := s.Create(ctx, "u-2")
	require.NoError(t, err)

	// first session expires exactly now
	clock.Advance(30 * time.Minute)
	n, err := s.RemoveExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func TestNewSessionStore_DefaultTTL(t *testing.T) {
	clock := newFakeClock()
	s := NewSessionStore(sessions.NewMemoryRepository(), 0, WithClock(clock.Now))

	created, err := s.Create(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, common.DefaultSessionTTL, created.ExpiresAt.Sub(created.CreatedAt))
}
