// Package lock cross-process run lock. It only avoids duplicate work;
// per-row transactions stay the correctness guarantee.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired another holder owns the key
var ErrNotAcquired = errors.New("lock held by another run")

// Locker Acquire returns a release func on success, ErrNotAcquired when the key is held
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// Noop always acquires; used when no redis is configured
type Noop struct{}

func (Noop) Acquire(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

// releaseScript deletes the key only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker SET NX PX lock with a random token per holder
type RedisLocker struct {
	Client *redis.Client
	Prefix string
}

// NewRedisLocker keys are stored as prefix + key
func NewRedisLocker(opt *redis.Options, prefix string) *RedisLocker {
	return &RedisLocker{Client: redis.NewClient(opt), Prefix: prefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	fullKey := l.Prefix + key
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return func() {
		// release must not depend on the caller's ctx, which may already be cancelled
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.Client, []string{fullKey}, token).Err()
	}, nil
}

// Close releases the redis connection pool
func (l *RedisLocker) Close() error {
	return l.Client.Close()
}
