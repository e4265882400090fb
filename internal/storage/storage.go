// Package storage provides the key-value persistence surface used by the
// repositories: whole collections serialized as JSON blobs under a small set
// of logical keys. Update serializes read-modify-write per key so concurrent
// mutations of the same collection cannot lose each other's writes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrKeyNotFound is returned by Get when the key has never been written.
var ErrKeyNotFound = errors.New("storage: key not found")

// Store is the persistence surface. Implementations must make Update
// atomic per key: fn receives the current value (nil if absent) and returns
// the replacement.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	Driver   string `yaml:"driver"` // memory, redis, postgres
	Redis    RedisConfig
	Postgres PostgresConfig
}

// RedisConfig holds redis backend settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PostgresConfig holds postgres backend settings
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// Open creates a store for the configured driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(cfg.Redis)
	case "postgres":
		return NewPostgresStore(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// keyedMutex hands out one mutex per key so unrelated collections do not
// contend with each other.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m
}
