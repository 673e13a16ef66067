package storage

import (
	"context"

	"talentapi/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis wraps the cache store client
type Redis struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

// NewRedis creates a Redis client for the configured cache store.
// The client connects lazily.
func NewRedis(cfg *config.Config, logger *zap.SugaredLogger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: 5,
	})

	return &Redis{
		client: client,
		logger: logger,
	}
}

// Name implements Dependency
func (r *Redis) Name() string { return "redis" }

// Addr implements Dependency
func (r *Redis) Addr() string { return r.client.Options().Addr }

// Ping tests the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.logger.Debugw("Redis ping failed", "addr", r.Addr(), "error", err)
		return err
	}
	return nil
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
