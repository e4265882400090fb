package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation. It is the default
// backend and the one the tests run against. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	updates *keyedMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    make(map[string][]byte),
		updates: newKeyedMutex(),
	}
}

// Get retrieves the value for key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

// Update applies fn to the current value of key under a per-key lock.
func (s *MemoryStore) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
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

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
