package lock

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLocker()

	token, ok, err := m.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	other, ok, err := m.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while held")
	assert.Empty(t, other)

	held, err := m.IsHeld(ctx, "k")
	require.NoError(t, err)
	assert.True(t, held)

	released, err := m.Release(ctx, "k", "not-the-owner")
	require.NoError(t, err)
	assert.False(t, released)

	released, err = m.Release(ctx, "k", token)
	require.NoError(t, err)
	assert.True(t, released)

	released, err = m.Release(ctx, "k", token)
	require.NoError(t, err)
	assert.False(t, released)
}

func TestMemoryLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryLocker()
	m.now = func() time.Time { return now }

	_, ok, _ := m.Acquire(ctx, "k", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)

	held, err := m.IsHeld(ctx, "k")
	require.NoError(t, err)
	assert.False(t, held)

	_, ok, _ = m.Acquire(ctx, "k", time.Second)
	assert.True(t, ok, "expired lock can be taken over")
}

func TestMemoryLocker_StaleHolderCannotReleaseTakeover(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryLocker()
	m.now = func() time.Time { return now }

	first, ok, err := m.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	second, ok, err := m.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	released, err := m.Release(ctx, "k", first)
	require.NoError(t, err)
	assert.False(t, released)

	held, err := m.IsHeld(ctx, "k")
	require.NoError(t, err)
	assert.True(t, held, "second holder keeps the lock")

	_, ok, _ = m.Acquire(ctx, "k", time.Minute)
	assert.False(t, ok)

	released, err = m.Release(ctx, "k", second)
	require.NoError(t, err)
	assert.True(t, released)
}

func TestMemoryLocker_ReleaseAfterExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryLocker()
	m.now = func() time.Time { return now }

	token, ok, _ := m.Acquire(ctx, "k", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	released, err := m.Release(ctx, "k", token)
	require.NoError(t, err)
	assert.False(t, released, "an expired lock was no longer held")

	_, ok, _ = m.Acquire(ctx, "k", time.Second)
	assert.True(t, ok)
}

func TestMemoryLocker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewMemoryLocker().Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithLock(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLocker()
	opts := Options{TTL: time.Minute, Retries: 0}

	t.Run("runs and releases", func(t *testing.T) {
		called := false
		err := WithLock(ctx, m, "k", opts, func() error {
			called = true
			held, _ := m.IsHeld(ctx, "k")
			assert.True(t, held)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)

		held, _ := m.IsHeld(ctx, "k")
		assert.False(t, held)
	})

	t.Run("propagates fn error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithLock(ctx, m, "k", opts, func() error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("not acquired", func(t *testing.T) {
		_, ok, _ := m.Acquire(ctx, "busy", time.Minute)
		require.True(t, ok)

		err := WithLock(ctx, m, "busy", opts, func() error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.ErrorIs(t, err, ErrNotAcquired)
	})
}

func TestWithLock_SerializesWriters(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLocker()
	opts := Options{TTL: time.Minute, Retries: 1000, RetryDelay: time.Millisecond}

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(ctx, m, "counter", opts, func() error {
				v := counter
				time.Sleep(100 * time.Microsecond)
				counter = v + 1
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, counter)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "lock:kv:admin_articles", Keys.Collection("admin_articles"))
}

func TestRedisLocker_Integration(t *testing.T) {
	addr := os.Getenv("INKSTAND_TEST_REDIS_ADDR")
	if addr == "" || testing.Short() {
		t.Skip("INKSTAND_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	a := NewRedisLocker(client)
	b := NewRedisLocker(client)
	key := Keys.Collection("test_" + time.Now().Format("150405.000000000"))

	token, ok, err := a.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	other, ok, err := b.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	released, err := b.Release(ctx, key, other)
	require.NoError(t, err)
	assert.False(t, released, "b never held the lock")

	released, err = b.Release(ctx, key, "not-the-owner")
	require.NoError(t, err)
	assert.False(t, released)

	released, err = a.Release(ctx, key, token)
	require.NoError(t, err)
	assert.True(t, released)

	held, err := a.IsHeld(ctx, key)
	require.NoError(t, err)
	assert.False(t, held)
}
