// Package app wires the storage backend, repository and services together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/prn-tf/inkstand/internal/analytics"
	"github.com/prn-tf/inkstand/internal/auth"
	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/content"
	"github.com/prn-tf/inkstand/internal/kv"
	"github.com/prn-tf/inkstand/internal/kv/backend"
	"github.com/prn-tf/inkstand/internal/kv/redisstore"
	"github.com/prn-tf/inkstand/internal/lock"
	"github.com/prn-tf/inkstand/internal/metrics"
	"github.com/prn-tf/inkstand/internal/repository"
	"github.com/prn-tf/inkstand/internal/seed"
)

// App holds every long-lived component. Build it once with New.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics metrics.Recorder

	Store      *kv.Store
	Repository *repository.Repository
	Auth       *auth.Service
	Content    *content.Service
	Analytics  *analytics.Aggregator
	Tracker    *analytics.Tracker
	Seeder     *seed.Seeder
}

// Option configures an App.
type Option func(*options)

type options struct {
	now      func() time.Time
	registry prometheus.Registerer
}

// WithClock overrides the time source of every component.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRegisterer registers metrics with reg instead of the default registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// New opens the configured backend and builds the services on top of it.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	o := options{
		now:      func() time.Time { return time.Now().UTC() },
		registry: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var rec metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Enabled {
		rec = metrics.NewCollector(o.registry, cfg.Metrics.Namespace)
	}

	be, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage backend: %w", err)
	}

	store := kv.NewStore(be, cfg.Storage.KeyPrefix, logger, rec)

	repo := repository.New(store, newLocker(be, logger), lock.Options{
		TTL:        cfg.Storage.LockTTL,
		Retries:    cfg.Storage.LockRetries,
		RetryDelay: cfg.Storage.LockRetryDelay,
	}, logger, repository.WithClock(o.now), repository.WithMetrics(rec))

	hasher, err := auth.NewHasher(cfg.Auth)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	authSvc := auth.NewService(repo, hasher,
		auth.NewLoginLimiter(cfg.Auth.MaxLoginAttempts, cfg.Auth.LoginWindow, o.now),
		auth.NewCSRF(repo), cfg.Auth, logger,
		auth.WithClock(o.now), auth.WithMetrics(rec))

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    rec,
		Store:      store,
		Repository: repo,
		Auth:       authSvc,
		Content:    content.NewService(repo, logger, o.now),
		Analytics:  analytics.NewAggregator(repo, o.now, logger),
		Tracker:    analytics.NewTracker(repo, o.now),
		Seeder:     seed.NewSeeder(repo, authSvc, cfg.Seed, logger, o.now),
	}, nil
}

// newLocker shares the Redis connection for locks when Redis is the backend,
// so that several processes serialize their writes. Other backends lock in
// process.
func newLocker(be kv.Backend, logger zerolog.Logger) lock.Locker {
	if rb, ok := be.(*redisstore.Backend); ok {
		logger.Debug().Msg("using redis locker")
		return lock.NewRedisLocker(rb.Client())
	}
	return lock.NewMemoryLocker()
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.Store.Close()
}
