package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/cryptox"
	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
	"github.com/stretchr/testify/require"
)

const (
	testKey = "this_is_my_secret_key_32_chars!!"
	testIV  = "this_is_my_iv_16"
)

func newTestCipher(t *testing.T) *cryptox.Cipher {
	t.Helper()
	c, err := cryptox.NewCipher(cryptox.NewKey(testKey), cryptox.NewIV(testIV))
	require.NoError(t, err)
	return c
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeUsersRepo lets tests inject failures per method.
type fakeUsersRepo struct {
	getByLoginOut *models.User
	getByLoginErr error
	getByIDErr    error
	createErr     error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	if f.getByLoginErr != nil {
		return nil, f.getByLoginErr
	}
	return f.getByLoginOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return &models.User{ID: id}, nil
}
