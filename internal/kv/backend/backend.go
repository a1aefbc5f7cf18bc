// Package backend opens the kv.Backend selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/kv"
	"github.com/prn-tf/inkstand/internal/kv/memory"
	"github.com/prn-tf/inkstand/internal/kv/postgres"
	"github.com/prn-tf/inkstand/internal/kv/redisstore"
	"github.com/prn-tf/inkstand/internal/kv/s3store"
	"github.com/prn-tf/inkstand/internal/kv/sqlite"
)

// Backend types.
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypeRedis    = "redis"
	TypePostgres = "postgres"
	TypeS3       = "s3"
)

// Open creates the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (kv.Backend, error) {
	logger.Info().Str("backend", cfg.Backend).Msg("opening storage backend")

	switch cfg.Backend {
	case TypeMemory:
		return memory.New(), nil
	case TypeSQLite:
		return sqlite.Open(ctx, cfg.SQLite, logger)
	case TypeRedis:
		return redisstore.Open(ctx, cfg.Redis, logger)
	case TypePostgres:
		return postgres.Open(ctx, cfg.Postgres, logger)
	case TypeS3:
		return s3store.Open(ctx, cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.Backend)
	}
}
