package secrets

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
)

type secretKey struct {
	userID string
	key    string
}

// MemoryRepository keeps secrets in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[secretKey]*models.Secret
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[secretKey]*models.Secret),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, secret *models.Secret) (*models.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := secretKey{userID: secret.UserID, key: secret.Key}
	if _, ok := r.items[k]; ok {
		return nil, common.ErrorDuplicateKey
	}

	if secret.CreatedAt.IsZero() {
		secret.CreatedAt = r.now()
	}

	s := *secret
	r.items[k] = &s

	return secret, nil
}

func (r *MemoryRepository) Get(ctx context.Context, userID, key string) (*models.Secret, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.items[secretKey{userID: userID, key: key}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	s := *stored
	return &s, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.Secret, error) {
	r.mu.RLock()
	result := make([]*models.Secret, 0)
	for k, stored := range r.items {
		if k.userID != userID {
			continue
		}
		s := *stored
		result = append(result, &s)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Key < result[j].Key
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}
