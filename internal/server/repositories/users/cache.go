package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// CachedRepository puts a bigcache in front of FindByID, the lookup done on
// every authenticated request. Entries expire after the configured TTL and
// are dropped when the account is deleted.
type CachedRepository struct {
	next  Repository
	cache *bigcache.BigCache
}

func NewCachedRepository(next Repository, ttl time.Duration) (*CachedRepository, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false
	if ttl < cfg.CleanWindow {
		cfg.CleanWindow = ttl
	}

	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating account cache: %w", err)
	}
	return &CachedRepository{next: next, cache: cache}, nil
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (r *CachedRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if data, err := r.cache.Get(cacheKey(id)); err == nil {
		user := &models.User{}
		if err := json.Unmarshal(data, user); err == nil {
			return user, nil
		}
	}

	user, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(user); err == nil {
		_ = r.cache.Set(cacheKey(id), data)
	}
	return user, nil
}

func (r *CachedRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.next.FindByEmail(ctx, email)
}

func (r *CachedRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.next.ExistsByID(ctx, id)
}

func (r *CachedRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	return r.next.Save(ctx, user)
}

func (r *CachedRepository) DeleteByID(ctx context.Context, id int64) error {
	err := r.next.DeleteByID(ctx, id)
	if delErr := r.cache.Delete(cacheKey(id)); delErr != nil && !errors.Is(delErr, bigcache.ErrEntryNotFound) {
		return fmt.Errorf("error evicting account %d: %w", id, delErr)
	}
	return err
}

// Close stops the cache's cleanup goroutine.
func (r *CachedRepository) Close() error {
	return r.cache.Close()
}
