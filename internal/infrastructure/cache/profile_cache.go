package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/user-auth-service/internal/domain/entity"
)

const DefaultProfileTTL = 10 * time.Minute

func profileKey(userID string) string {
	return "user:profile:" + userID
}

// Entries are stored as "<version>|<json>" where version is the profile's
// updatedAt in microseconds. The script refuses to replace a newer entry,
// so a fill from a slow read cannot overwrite a later update.
var storeIfNotOlder = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local v = tonumber(string.match(cur, '^(%d+)|'))
  if v and v > tonumber(ARGV[1]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1] .. '|' .. ARGV[2], 'PX', ARGV[3])
return 1
`)

// ProfileCache stores public profiles as JSON in Redis.
type ProfileCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewProfileCache(rdb redis.Cmdable, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

func version(u entity.PublicUser) int64 {
	if v := u.UpdatedAt.UnixMicro(); v > 0 {
		return v
	}
	return 0
}

// Get returns nil on a miss.
func (c *ProfileCache) Get(ctx context.Context, userID string) (*entity.PublicUser, error) {
	raw, err := c.rdb.Get(ctx, profileKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_, payload, ok := bytes.Cut(raw, []byte("|"))
	if !ok {
		return nil, fmt.Errorf("malformed profile cache entry for %s", userID)
	}
	var u entity.PublicUser
	if err := json.Unmarshal(payload, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Set caches u unless the cached entry is from a later update. A skipped
// write is not an error.
func (c *ProfileCache) Set(ctx context.Context, u entity.PublicUser) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return storeIfNotOlder.Run(ctx, c.rdb,
		[]string{profileKey(u.ID)},
		strconv.FormatInt(version(u), 10), string(b), c.ttl.Milliseconds(),
	).Err()
}

func (c *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, profileKey(userID)).Err()
}
