package tokens

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
)

// MemoryRepository keeps tokens in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	byName   map[string]models.Token
	byLookup map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byName:   make(map[string]models.Token),
		byLookup: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, t *models.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[t.Name]; ok {
		return common.ErrorTokenAlreadyExists
	}

	r.byName[t.Name] = *t
	r.indexLookup(t.Lookup, t.Name)
	return nil
}

func (r *MemoryRepository) indexLookup(lookup, name string) {
	if lookup == "" {
		return
	}
	if _, ok := r.byLookup[lookup]; !ok {
		r.byLookup[lookup] = name
	}
}

func (r *MemoryRepository) SetLookup(ctx context.Context, name, lookup string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byName[name]
	if !ok {
		return common.ErrorNotFound
	}

	if r.byLookup[t.Lookup] == name {
		delete(r.byLookup, t.Lookup)
	}
	t.Lookup = lookup
	r.byName[name] = t
	r.indexLookup(lookup, name)
	return nil
}

func (r *MemoryRepository) GetByName(ctx context.Context, name string) (*models.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) GetByLookup(ctx context.Context, lookup string) (*models.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.byLookup[lookup]
	if !ok {
		return nil, common.ErrorNotFound
	}
	t := r.byName[name]
	return &t, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.Token, error) {
	r.mu.RLock()
	result := make([]*models.Token, 0, len(r.byName))
	for _, t := range r.byName {
		t := t
		result = append(result, &t)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
