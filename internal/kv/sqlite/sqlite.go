// Package sqlite provides a kv.Backend stored in a single SQLite file.
// This package uses modernc.org/sqlite, a pure Go SQLite implementation that
// doesn't require CGO, so the admin binary stays a single static executable.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rs/zerolog"

	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/kv"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Backend implements kv.Backend on a kv_store table.
type Backend struct {
	db     *sql.DB
	logger zerolog.Logger
	path   string
	now    func() time.Time
}

// Open connects to the database at cfg.Path and applies pending migrations.
func Open(ctx context.Context, cfg config.SQLiteConfig, logger zerolog.Logger) (*Backend, error) {
	logger = logger.With().Str("component", "kv.sqlite").Logger()

	if cfg.Path != MemoryPath {
		if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", connString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite works best with a single writer; an in-memory database also
	// exists only for the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	b := &Backend{
		db:     db,
		logger: logger,
		path:   cfg.Path,
		now:    func() time.Time { return time.Now().UTC() },
	}

	if err := b.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().
		Str("path", cfg.Path).
		Str("journal_mode", cfg.JournalMode).
		Msg("connected to SQLite database")

	return b, nil
}

// connString builds a modernc DSN with _pragma parameters.
func connString(cfg config.SQLiteConfig) string {
	var pragmas []string
	if cfg.JournalMode != "" && cfg.Path != MemoryPath {
		pragmas = append(pragmas, fmt.Sprintf("journal_mode(%s)", cfg.JournalMode))
	}
	if cfg.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout))
	}
	if cfg.SynchronousMode != "" {
		pragmas = append(pragmas, fmt.Sprintf("synchronous(%s)", cfg.SynchronousMode))
	}
	if len(pragmas) == 0 {
		return cfg.Path
	}
	return cfg.Path + "?_pragma=" + strings.Join(pragmas, "&_pragma=")
}

// Get retrieves a value by key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, nil
}

// Set upserts a value.
func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, b.now().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// Delete removes all keys in one transaction.
func (b *Backend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return b.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM kv_store WHERE key = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare delete: %w", err)
		}
		defer stmt.Close()

		for _, key := range keys {
			if _, err := stmt.ExecContext(ctx, key); err != nil {
				return fmt.Errorf("failed to delete %q: %w", key, err)
			}
		}
		return nil
	})
}

// Close closes the database connection.
func (b *Backend) Close() error {
	b.logger.Info().Msg("closing SQLite connection")
	return b.db.Close()
}

// WithTx executes a function within a transaction.
// If the function returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
func (b *Backend) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Migrate applies every embedded migration newer than the recorded schema version.
func (b *Backend) Migrate(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err = b.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		err := b.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		b.logger.Info().Int("version", m.version).Msg("applied migration")
	}

	return nil
}

type migration struct {
	version int
	sql     string
}

// loadMigrations reads NNNNNN_name.up.sql files in version order.
func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var out []migration
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("malformed migration name %q", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("malformed migration version %q: %w", name, err)
		}
		body, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %q: %w", name, err)
		}
		out = append(out, migration{version: version, sql: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// Ensure Backend implements kv.Backend.
var _ kv.Backend = (*Backend)(nil)
