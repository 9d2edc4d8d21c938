package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// Two keys per session: <prefix>:owner:<id> holds the value and
// <prefix>:value:<v> holds the owner. Both are written by Lua scripts so the
// pair never diverges. The scripts derive value keys from ARGV, so they need
// a single-node (or sentinel failover) client; cluster clients are not
// accepted.

const replaceScript = `
local held = redis.call("GET", ARGV[3] .. ARGV[2])
if held and held ~= ARGV[1] then
  return {-1}
end
local prev = redis.call("GET", KEYS[1])
if prev then
  redis.call("DEL", ARGV[3] .. prev)
end
redis.call("SET", KEYS[1], ARGV[2])
redis.call("SET", ARGV[3] .. ARGV[2], ARGV[1])
if prev then
  return {1, prev}
end
return {0}
`

var replaceLua = redis.NewScript(replaceScript)

const deleteScript = `
local prev = redis.call("GET", KEYS[1])
if not prev then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("DEL", ARGV[1] .. prev)
return 1
`

var deleteLua = redis.NewScript(deleteScript)

type RedisRepository struct {
	redis  *redis.Client
	prefix string
}

func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	return &RedisRepository{redis: client, prefix: prefix}
}

func (r *RedisRepository) ownerKey(ownerID int64) string {
	return r.prefix + ":owner:" + strconv.FormatInt(ownerID, 10)
}

func (r *RedisRepository) valuePrefix() string {
	return r.prefix + ":value:"
}

func (r *RedisRepository) Replace(ctx context.Context, entry *models.TokenEntry) (*models.TokenEntry, error) {
	res, err := replaceLua.Run(ctx, r.redis,
		[]string{r.ownerKey(entry.OwnerID)},
		strconv.FormatInt(entry.OwnerID, 10),
		strconv.FormatInt(entry.Value, 10),
		r.valuePrefix(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("redis error: empty script reply")
	}

	status, ok := res[0].(int64)
	if !ok {
		return nil, fmt.Errorf("redis error: unexpected status %T", res[0])
	}

	switch status {
	case -1:
		return nil, common.ErrorAlreadyExists
	case 0:
		return nil, nil
	}

	if len(res) < 2 {
		return nil, fmt.Errorf("redis error: missing previous value")
	}
	raw, _ := res[1].(string)
	prev, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis error: corrupt previous value %q: %w", raw, err)
	}
	return &models.TokenEntry{OwnerID: entry.OwnerID, Value: prev}, nil
}

func (r *RedisRepository) Get(ctx context.Context, ownerID int64) (*models.TokenEntry, error) {
	value, err := r.redis.Get(ctx, r.ownerKey(ownerID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return &models.TokenEntry{OwnerID: ownerID, Value: value}, nil
}

func (r *RedisRepository) Delete(ctx context.Context, ownerID int64) error {
	if err := deleteLua.Run(ctx, r.redis, []string{r.ownerKey(ownerID)}, r.valuePrefix()).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) ValueExists(ctx context.Context, value int64) (bool, error) {
	n, err := r.redis.Exists(ctx, r.valuePrefix()+strconv.FormatInt(value, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n > 0, nil
}
