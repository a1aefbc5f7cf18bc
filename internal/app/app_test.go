package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/inkstand/internal/auth"
	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/content"
	"github.com/prn-tf/inkstand/internal/domain"
	"github.com/prn-tf/inkstand/internal/kv/memory"
	"github.com/prn-tf/inkstand/internal/lock"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{
			Backend:        backend,
			KeyPrefix:      "admin_",
			LockTTL:        time.Second,
			LockRetries:    10,
			LockRetryDelay: time.Millisecond,
			SQLite:         config.SQLiteConfig{Path: ":memory:", JournalMode: "WAL", BusyTimeout: 1000, SynchronousMode: "NORMAL"},
		},
		Auth: config.AuthConfig{
			Hasher:           auth.HasherBcrypt,
			BcryptCost:       4,
			SessionTTL:       24 * time.Hour,
			RememberMeTTL:    30 * 24 * time.Hour,
			MaxLoginAttempts: 5,
			LoginWindow:      15 * time.Minute,
		},
		Seed: config.SeedConfig{
			AdminEmail:      "admin@example.com",
			AdminUsername:   "admin",
			AdminPassword:   "admin123!",
			SamplePageViews: true,
			SampleSeed:      1,
		},
		Metrics: config.MetricsConfig{Enabled: true, Namespace: "inkstand"},
	}
}

func TestNew_EndToEnd(t *testing.T) {
	for _, backend := range []string{"memory", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			reg := prometheus.NewRegistry()

			a, err := New(ctx, testConfig(backend), zerolog.Nop(),
				WithClock(func() time.Time { return testNow }), WithRegisterer(reg))
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.Close() })

			require.NoError(t, a.Seeder.Initialize(ctx))

			res, err := a.Auth.Login(ctx, auth.LoginRequest{Identifier: "admin", Password: "admin123!"})
			require.NoError(t, err)
			require.True(t, res.Success)

			article, err := a.Content.Create(ctx, content.ArticleInput{
				Title:    "Fresh Take",
				Content:  "body",
				Category: "Constitutional Law",
				Status:   domain.StatusPublished,
			})
			require.NoError(t, err)

			a.Tracker.RecordPageView(ctx, domain.ArticlePathPrefix+article.Slug, "test", "")

			report := a.Analytics.Compute(ctx)
			assert.Equal(t, 7, report.TotalArticles)
			assert.Equal(t, 7, report.PublishedArticles)
			assert.Positive(t, report.TotalViews)
			assert.Len(t, report.DailyViews, 30)

			count, err := testutil.GatherAndCount(reg, "inkstand_login_attempts_total")
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestNewLocker(t *testing.T) {
	_, ok := newLocker(memory.New(), zerolog.Nop()).(*lock.MemoryLocker)
	assert.True(t, ok)
}

func TestNew_BadBackend(t *testing.T) {
	_, err := New(context.Background(), testConfig("etcd"), zerolog.Nop(), WithRegisterer(prometheus.NewRegistry()))
	assert.Error(t, err)
}
