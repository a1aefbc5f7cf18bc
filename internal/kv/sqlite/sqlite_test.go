package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/kv"
)

func openTest(t *testing.T, path string) *Backend {
	t.Helper()
	b, err := Open(context.Background(), config.SQLiteConfig{
		Path:            path,
		JournalMode:     "WAL",
		BusyTimeout:     5000,
		SynchronousMode: "NORMAL",
	}, zerolog.Nop())
	require.NoError(t, err)
	return b
}

func TestBackend_CRUD(t *testing.T) {
	ctx := context.Background()
	b := openTest(t, MemoryPath)
	defer b.Close()

	_, err := b.Get(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, b.Set(ctx, "a", []byte(`[1,2]`)))
	require.NoError(t, b.Set(ctx, "a", []byte(`[3]`)))
	require.NoError(t, b.Set(ctx, "b", nil))
	require.NoError(t, b.Set(ctx, "c", []byte(`"x"`)))

	got, err := b.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `[3]`, string(got))

	got, err = b.Get(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, b.Delete(ctx, "a", "b", "never"))

	_, err = b.Get(ctx, "a")
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = b.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestBackend_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "inkstand.db")

	b := openTest(t, path)
	require.NoError(t, b.Set(ctx, "admin_users", []byte(`[]`)))
	require.NoError(t, b.Close())

	b = openTest(t, path)
	defer b.Close()

	got, err := b.Get(ctx, "admin_users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	// Reopening must not re-apply migrations.
	require.NoError(t, b.Migrate(ctx))
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].version)
	assert.Contains(t, migrations[0].sql, "kv_store")
}

func TestConnString(t *testing.T) {
	assert.Equal(t,
		"data.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(100)&_pragma=synchronous(FULL)",
		connString(config.SQLiteConfig{Path: "data.db", JournalMode: "WAL", BusyTimeout: 100, SynchronousMode: "FULL"}),
	)
	assert.Equal(t, ":memory:", connString(config.SQLiteConfig{Path: MemoryPath, JournalMode: "WAL"}))
}
