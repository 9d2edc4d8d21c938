package sessions

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	byOwner map[int64]int64
	byValue map[int64]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byOwner: make(map[int64]int64),
		byValue: make(map[int64]int64),
	}
}

func (r *MemoryRepository) Replace(_ context.Context, entry *models.TokenEntry) (*models.TokenEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.byValue[entry.Value]; ok && owner != entry.OwnerID {
		return nil, common.ErrorAlreadyExists
	}

	var prev *models.TokenEntry
	if value, ok := r.byOwner[entry.OwnerID]; ok {
		delete(r.byValue, value)
		prev = &models.TokenEntry{OwnerID: entry.OwnerID, Value: value}
	}

	r.byOwner[entry.OwnerID] = entry.Value
	r.byValue[entry.Value] = entry.OwnerID
	return prev, nil
}

func (r *MemoryRepository) Get(_ context.Context, ownerID int64) (*models.TokenEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.byOwner[ownerID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.TokenEntry{OwnerID: ownerID, Value: value}, nil
}

func (r *MemoryRepository) Delete(_ context.Context, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if value, ok := r.byOwner[ownerID]; ok {
		delete(r.byOwner, ownerID)
		delete(r.byValue, value)
	}
	return nil
}

func (r *MemoryRepository) ValueExists(_ context.Context, value int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byValue[value]
	return ok, nil
}
