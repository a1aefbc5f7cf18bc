package redisstore

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/kv"
)

func openTest(t *testing.T) *Backend {
	t.Helper()
	host := os.Getenv("INKSTAND_TEST_REDIS_HOST")
	if host == "" || testing.Short() {
		t.Skip("INKSTAND_TEST_REDIS_HOST not set")
	}
	port := 6379
	if p := os.Getenv("INKSTAND_TEST_REDIS_PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		require.NoError(t, err)
	}

	b, err := Open(context.Background(), config.RedisConfig{
		Host:        host,
		Port:        port,
		PoolSize:    2,
		DialTimeout: 2 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBackend_Integration(t *testing.T) {
	b := openTest(t)
	ctx := context.Background()
	prefix := "inkstand_test_" + strconv.FormatInt(time.Now().UnixNano(), 36) + "_"

	_, err := b.Get(ctx, prefix+"missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, b.Set(ctx, prefix+"a", []byte(`{"x":1}`)))
	require.NoError(t, b.Set(ctx, prefix+"b", []byte(`[]`)))

	got, err := b.Get(ctx, prefix+"a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(got))

	require.NoError(t, b.Delete(ctx, prefix+"a", prefix+"b", prefix+"never"))

	_, err = b.Get(ctx, prefix+"b")
	assert.ErrorIs(t, err, kv.ErrNotFound)
	assert.NotNil(t, b.Client())
}
