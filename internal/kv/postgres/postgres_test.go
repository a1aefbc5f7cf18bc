package postgres

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

func TestBackend_Integration(t *testing.T) {
	host := os.Getenv("INKSTAND_TEST_POSTGRES_HOST")
	if host == "" || testing.Short() {
		t.Skip("INKSTAND_TEST_POSTGRES_HOST not set")
	}

	ctx := context.Background()
	b, err := Open(ctx, config.PostgresConfig{
		Host:     host,
		Port:     5432,
		User:     envOr("INKSTAND_TEST_POSTGRES_USER", "inkstand"),
		Password: os.Getenv("INKSTAND_TEST_POSTGRES_PASSWORD"),
		Database: envOr("INKSTAND_TEST_POSTGRES_DB", "inkstand"),
		SSLMode:  "disable",
		MaxConns: 2,
	}, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()

	prefix := "test_" + strconv.FormatInt(time.Now().UnixNano(), 36) + "_"

	_, err = b.Get(ctx, prefix+"missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, b.Set(ctx, prefix+"a", []byte(`[1]`)))
	require.NoError(t, b.Set(ctx, prefix+"a", []byte(`[2]`)))
	require.NoError(t, b.Set(ctx, prefix+"b", nil))

	got, err := b.Get(ctx, prefix+"a")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	require.NoError(t, b.Delete(ctx, prefix+"a", prefix+"b"))

	_, err = b.Get(ctx, prefix+"a")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
