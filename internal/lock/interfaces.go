// Package lock provides distributed and local locking abstractions.
// Every read-modify-write of a stored collection runs under a lock on that
// collection's key. A single process uses memory locks; processes sharing a
// Redis backend use Redis locks.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired indicates the lock stayed held by someone else for every retry.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker defines the interface for distributed/local locking.
type Locker interface {
	// Acquire attempts to acquire a lock.
	// On success it returns the owner token that Release must present.
	// Returns false if the lock is held by another owner.
	// The lock will automatically expire after the specified TTL.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	// AcquireWithRetry attempts to acquire a lock with retries.
	// Will retry up to maxRetries times with retryDelay between attempts.
	AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (string, bool, error)

	// Release releases the lock if it is still held under token.
	// Returns false if it expired or was taken over by another owner.
	Release(ctx context.Context, key, token string) (bool, error)

	// IsHeld checks if the lock is currently held by anyone.
	IsHeld(ctx context.Context, key string) (bool, error)
}

// Options controls how WithLock acquires its lock.
type Options struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

// WithLock runs fn while holding key.
// It returns ErrNotAcquired when the lock could not be taken.
func WithLock(ctx context.Context, locker Locker, key string, opts Options, fn func() error) error {
	token, acquired, err := locker.AcquireWithRetry(ctx, key, opts.TTL, opts.Retries, opts.RetryDelay)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrNotAcquired
	}
	defer func() {
		// Release with a fresh context so a cancelled caller doesn't strand the lock.
		_, _ = locker.Release(context.WithoutCancel(ctx), key, token)
	}()
	return fn()
}

// retry calls acquire until it succeeds or maxRetries is exhausted.
func retry(ctx context.Context, maxRetries int, retryDelay time.Duration, acquire func() (string, bool, error)) (string, bool, error) {
	for i := 0; i <= maxRetries; i++ {
		token, acquired, err := acquire()
		if err != nil {
			return "", false, err
		}
		if acquired {
			return token, true, nil
		}

		// Don't sleep on the last attempt.
		if i < maxRetries {
			select {
			case <-ctx.Done():
				return "", false, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return "", false, nil
}

// =============================================================================
// Common Lock Keys
// =============================================================================

// Keys provides lock key generation.
var Keys = lockKeys{}

type lockKeys struct{}

// Collection returns the lock key guarding a stored collection.
func (lockKeys) Collection(physicalKey string) string {
	return "lock:kv:" + physicalKey
}
