package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/inkstand/internal/kv"
	"github.com/prn-tf/inkstand/internal/lock"
	"github.com/prn-tf/inkstand/internal/metrics"
)

// Logical storage keys. The kv.Store adds the configured prefix.
const (
	KeyUsers         = "users"
	KeyArticles      = "articles"
	KeyNotifications = "notifications"
	KeyPageViews     = "page_views"
	KeySession       = "session"
	KeyActivity      = "activity"
	KeySettings      = "settings"
	KeyCSRFToken     = "csrf_token"
)

// AllKeys lists every key ClearAllData removes.
var AllKeys = []string{
	KeyUsers,
	KeyArticles,
	KeyNotifications,
	KeyPageViews,
	KeySession,
	KeyActivity,
	KeySettings,
	KeyCSRFToken,
}

// Collection caps.
const (
	MaxPageViews = 1000
	MaxActivity  = 100
)

// Repository implements Store on a kv.Store.
type Repository struct {
	store    *kv.Store
	locker   lock.Locker
	lockOpts lock.Options
	logger   zerolog.Logger
	metrics  metrics.Recorder
	now      func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the time source used for archive timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithMetrics records page views, activity and dropped writes.
func WithMetrics(rec metrics.Recorder) Option {
	return func(r *Repository) { r.metrics = rec }
}

// New creates a new Repository.
func New(store *kv.Store, locker lock.Locker, lockOpts lock.Options, logger zerolog.Logger, opts ...Option) *Repository {
	r := &Repository{
		store:    store,
		locker:   locker,
		lockOpts: lockOpts,
		logger:   logger.With().Str("component", "repository").Logger(),
		metrics:  metrics.Nop{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// KV returns the underlying store.
func (r *Repository) KV() *kv.Store {
	return r.store
}

// ClearAllData removes every collection in one backend call.
func (r *Repository) ClearAllData(ctx context.Context) {
	r.store.Remove(ctx, AllKeys...)
	r.logger.Info().Msg("cleared all data")
}

// mutate runs fn while holding the lock for name.
// If the lock can't be taken the mutation is dropped and logged.
func (r *Repository) mutate(ctx context.Context, name string, fn func()) {
	key := lock.Keys.Collection(r.store.Key(name))
	err := lock.WithLock(ctx, r.locker, key, r.lockOpts, func() error {
		fn()
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Str("key", name).Msg("dropping write: lock unavailable")
		r.metrics.RecordWriteFailure(name)
	}
}

// update loads a collection, applies fn and writes the result back when fn
// reports a change.
func update[T any](ctx context.Context, r *Repository, name string, fn func(items []T) ([]T, bool)) {
	r.mutate(ctx, name, func() {
		items := kv.Get(ctx, r.store, name, []T{})
		if next, changed := fn(items); changed {
			kv.Set(ctx, r.store, name, next)
		}
	})
}

// kvSet writes a whole collection.
func kvSet[T any](ctx context.Context, r *Repository, name string, items []T) {
	if items == nil {
		items = []T{}
	}
	kv.Set(ctx, r.store, name, items)
}

// list loads a collection, never returning nil.
func list[T any](ctx context.Context, r *Repository, name string) []T {
	items := kv.Get(ctx, r.store, name, []T{})
	if items == nil {
		return []T{}
	}
	return items
}

// filter returns the items matching keep, never nil.
func filter[T any](items []T, keep func(*T) bool) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// Ensure Repository implements Store.
var _ Store = (*Repository)(nil)
