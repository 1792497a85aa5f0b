package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sddportal/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRowLock returns a Redis-backed lock when Redis is enabled and reachable,
// otherwise an in-memory lock. The returned close function releases the client.
func NewRowLock(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (RowLock, func() error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Using in-memory row lock")
		return NewInMemoryRowLock(), func() error { return nil }
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory row lock",
			zap.String("addr", cfg.Addr()),
			zap.Error(err))
		return NewInMemoryRowLock(), func() error { return nil }
	}

	logger.Info("Using Redis row lock", zap.String("addr", cfg.Addr()))
	return NewRedisRowLock(client), client.Close
}
