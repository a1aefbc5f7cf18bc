// Package redisstore provides a kv.Backend on Redis strings.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/kv"
)

// Backend implements kv.Backend with GET, SET and DEL.
type Backend struct {
	client redis.UniversalClient
	logger zerolog.Logger
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*Backend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger = logger.With().Str("component", "kv.redis").Logger()
	logger.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Msg("connected to Redis")

	return New(client, logger), nil
}

// New wraps an existing client.
func New(client redis.UniversalClient, logger zerolog.Logger) *Backend {
	return &Backend{client: client, logger: logger}
}

// Client returns the underlying client so locks can share the connection.
func (b *Backend) Client() redis.UniversalClient {
	return b.client
}

// Get retrieves a value by key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, nil
}

// Set stores a value without expiry.
func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// Delete removes all keys with a single DEL.
func (b *Backend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := b.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// Close closes the client.
func (b *Backend) Close() error {
	b.logger.Info().Msg("closing Redis connection")
	return b.client.Close()
}

// Ensure Backend implements kv.Backend.
var _ kv.Backend = (*Backend)(nil)
