package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryRepository keeps accounts in process memory. It is safe for
// concurrent use; Save checks both uniqueness constraints under one lock.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[int64]models.User
	byEmail map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[int64]models.User),
		byEmail: make(map[string]int64),
	}
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) ExistsByID(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[id]
	return ok, nil
}

func (r *MemoryRepository) Save(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.byID[user.ID]; ok {
		return nil, common.ErrIdentifierTaken
	}

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID

	saved := *user
	return &saved, nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, u.Email)
	return nil
}
