// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"tourism-router/internal/common/config"
	apperrors "tourism-router/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs the answer cache and the community-content index.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds the client. Timeouts stay well under the per-query
// budget so a slow Redis degrades to cache misses instead of stalling
// the orchestrator.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping verifies the connection and maps failures onto the shared error model.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(fmt.Errorf("redis ping failed: %w", err))
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// Get returns the value at key; a miss surfaces as redis.Nil.
func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

// Set writes a value with the given expiration; zero means no expiry.
func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, key, value, expiration).Err()
}

// GetClient exposes the raw client for adapters that need search commands.
func (c *RedisClient) GetClient() *redis.Client {
	return c.Client
}
