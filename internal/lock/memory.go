package lock

import (
	"context"
	"sync"
	"time"

	"github.com/prn-tf/inkstand/internal/pkg/crypto"
)

type memoryLock struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker implements Locker using in-memory locks.
// The locks are NOT shared across process restarts or multiple instances.
// Expired entries are replaced lazily on the next Acquire.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryLock
	now   func() time.Time
}

// NewMemoryLocker creates a new in-memory locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]memoryLock),
		now:   time.Now,
	}
}

// Acquire attempts to acquire a lock.
func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if ctx.Err() != nil {
		return "", false, ctx.Err()
	}

	token, err := crypto.GenerateToken()
	if err != nil {
		return "", false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if l, exists := m.locks[key]; exists && now.Before(l.expiresAt) {
		return "", false, nil
	}

	m.locks[key] = memoryLock{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// AcquireWithRetry attempts to acquire a lock with retries.
func (m *MemoryLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (string, bool, error) {
	return retry(ctx, maxRetries, retryDelay, func() (string, bool, error) {
		return m.Acquire(ctx, key, ttl)
	})
}

// Release releases a lock still held under token.
func (m *MemoryLocker) Release(ctx context.Context, key, token string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l, exists := m.locks[key]
	if !exists || !crypto.EqualStrings(l.token, token) {
		return false, nil
	}
	delete(m.locks, key)
	return m.now().Before(l.expiresAt), nil
}

// IsHeld checks if a lock is currently held.
func (m *MemoryLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l, exists := m.locks[key]
	if !exists {
		return false, nil
	}
	if !m.now().Before(l.expiresAt) {
		delete(m.locks, key)
		return false, nil
	}
	return true, nil
}

// Ensure MemoryLocker implements Locker.
var _ Locker = (*MemoryLocker)(nil)
