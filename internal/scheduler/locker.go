package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker grants a key to exactly one caller until ttl expires.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// NopLocker grants every key; for single-replica deployments.
type NopLocker struct{}

// Acquire always succeeds.
func (NopLocker) Acquire(context.Context, string, time.Duration) (bool, error) { return true, nil }

// RedisLocker claims keys with SET NX.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker builds a locker over client; keys are namespaced by prefix.
func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

// Acquire reports whether this caller now owns key.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return l.client.SetNX(ctx, l.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}
