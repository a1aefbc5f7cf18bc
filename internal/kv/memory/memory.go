// Package memory provides an in-process kv.Backend.
// Data lives only as long as the process; it backs tests and ephemeral runs.
package memory

import (
	"context"
	"sync"

	"github.com/prn-tf/inkstand/internal/kv"
)

// Backend implements kv.Backend using a map.
type Backend struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{items: make(map[string][]byte)}
}

// Get retrieves a value by key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, exists := b.items[key]
	if !exists {
		return nil, kv.ErrNotFound
	}

	// Return a copy to prevent mutation.
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Set stores a value.
func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	b.items[key] = valueCopy
	return nil
}

// Delete removes the given keys under a single lock.
func (b *Backend) Delete(ctx context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, key := range keys {
		delete(b.items, key)
	}
	return nil
}

// Len returns the number of stored keys.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// Close is a no-op.
func (b *Backend) Close() error {
	return nil
}

// Ensure Backend implements kv.Backend.
var _ kv.Backend = (*Backend)(nil)
