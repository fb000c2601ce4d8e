package keylock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisTTL    = 30 * time.Second
	defaultRetryDelay  = 25 * time.Millisecond
	defaultRedisPrefix = "schedlock"
)

// Deletes the key only if it still carries our token.
var redisReleaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisClient is the subset of *redis.Client used by RedisLocker.
type RedisClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisLocker is a lease-based distributed lock for multi-instance deployments.
// Each key is a SET NX PX entry holding a random owner token; a crashed holder
// loses the lease after TTL.
type RedisLocker struct {
	rdb        RedisClient
	ttl        time.Duration
	retryDelay time.Duration
	prefix     string
}

func NewRedisLocker(rdb RedisClient, ttl, retryDelay time.Duration, prefix string) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisLocker{rdb: rdb, ttl: ttl, retryDelay: retryDelay, prefix: prefix}
}

func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	token := uuid.NewString()
	release := make([]func(), 0, len(keys))

	for _, key := range keys {
		redisKey := l.prefix + ":" + key
		if err := l.acquire(ctx, redisKey, token); err != nil {
			releaseAll(release)()
			return nil, err
		}
		release = append(release, func() {
			// Release must not depend on the caller's possibly expired context.
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = redisReleaseScript.Run(releaseCtx, l.rdb, []string{redisKey}, token).Err()
		})
	}

	return releaseAll(release), nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.retryDelay)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: key %s: %v", ErrLockTimeout, key, ctx.Err())
			}
			return fmt.Errorf("%w: key %s: %v", ErrLockBackend, key, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("%w: key %s: %v", ErrLockTimeout, key, ctx.Err())
		}
	}
}
