package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists collections as redis string values. Per-key update
// serialization happens in-process; a single service instance is assumed to
// own its keys (see the postgres backend for the same constraint).
type RedisStore struct {
	client  *redis.Client
	updates *keyedMutex
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts := &redis.Options{
		Addr: cfg.Addr,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client, updates: newKeyedMutex()}, nil
}

// Client exposes the underlying redis client so the event notifier can share
// the connection for pub/sub.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Get retrieves the value for key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key with no expiry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// Update applies fn to the current value of key under a per-key lock.
func (s *RedisStore) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	lock := s.updates.lock(key)
	defer lock.Unlock()

	current, err := s.Get(ctx, key)
	if err != nil && err != ErrKeyNotFound {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, next)
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
