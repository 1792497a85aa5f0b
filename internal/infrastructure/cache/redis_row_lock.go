package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRowLock implements RowLock with SET NX PX, shared across instances
type RedisRowLock struct {
	client redis.UniversalClient
}

var _ RowLock = (*RedisRowLock)(nil)

// NewRedisRowLock creates a row lock backed by client
func NewRedisRowLock(client redis.UniversalClient) *RedisRowLock {
	return &RedisRowLock{client: client}
}

// TryAcquire implements RowLock
func (l *RedisRowLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (*Lease, bool, error) {
	lease := &Lease{Key: key, Token: newToken()}
	ok, err := l.client.SetNX(ctx, key, lease.Token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire row lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return lease, true, nil
}

// Release implements RowLock
func (l *RedisRowLock) Release(ctx context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{lease.Key}, lease.Token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release row lock: %w", err)
	}
	return nil
}
