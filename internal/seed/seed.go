// Package seed bootstraps an empty store: the owner account, the legacy
// article catalogue, welcome notifications and optional sample traffic.
package seed

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/inkstand/internal/auth"
	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/domain"
	"github.com/prn-tf/inkstand/internal/repository"
)

//go:embed data/articles.json data/article.md.tmpl
var dataFS embed.FS

const (
	// SampleDays is how many days of synthetic traffic are generated.
	SampleDays = 30

	// MaxSampleViewsPerDay bounds the synthetic views generated per day.
	MaxSampleViewsPerDay = 50

	sampleUserAgent = "Mozilla/5.0 (sample data)"
	sampleIP        = "127.0.0.1"
)

var samplePages = []string{"/", "/about", "/contact", "/articles", "/subscribe"}

// OwnerCreator creates the owner account when none exists.
type OwnerCreator interface {
	EnsureOwner(ctx context.Context, seed auth.OwnerSeed) (bool, error)
}

// legacyArticle is an entry of the embedded article catalogue.
type legacyArticle struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Summary     string   `json:"summary"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	PublishDate string   `json:"publishDate"`
	ReadingTime string   `json:"readingTime"`
}

// Seeder populates missing collections. Every step only fills a collection
// that is empty, so Initialize is safe to run on each start.
type Seeder struct {
	store  repository.Store
	owners OwnerCreator
	cfg    config.SeedConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewSeeder creates a new Seeder.
func NewSeeder(store repository.Store, owners OwnerCreator, cfg config.SeedConfig, logger zerolog.Logger, now func() time.Time) *Seeder {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Seeder{
		store:  store,
		owners: owners,
		cfg:    cfg,
		logger: logger.With().Str("component", "seed").Logger(),
		now:    now,
	}
}

// Initialize runs every bootstrap step in order.
func (s *Seeder) Initialize(ctx context.Context) error {
	s.logger.Info().Msg("initializing admin system")

	if _, err := s.owners.EnsureOwner(ctx, auth.OwnerSeed{
		Email:    s.cfg.AdminEmail,
		Username: s.cfg.AdminUsername,
		Password: s.cfg.AdminPassword,
	}); err != nil {
		return fmt.Errorf("create owner account: %w", err)
	}

	if err := s.importLegacyArticles(ctx); err != nil {
		return fmt.Errorf("import legacy articles: %w", err)
	}

	s.store.MigrateArticles(ctx)
	s.seedNotifications(ctx)
	if s.cfg.SamplePageViews {
		s.seedPageViews(ctx)
	}

	articles := len(s.store.Articles(ctx))
	notifications := len(s.store.Notifications(ctx))
	views := len(s.store.PageViews(ctx))

	s.store.AddActivity(ctx, domain.ActivityEvent{
		ID:          uuid.NewString(),
		Type:        domain.ActivityArticleCreated,
		Description: "Admin system initialization completed",
		Timestamp:   s.now(),
		Metadata: map[string]any{
			"articlesCount":      articles,
			"notificationsCount": notifications,
			"pageViewsCount":     views,
		},
	})

	s.logger.Info().
		Int("articles", articles).
		Int("notifications", notifications).
		Int("page_views", views).
		Msg("admin system initialization complete")
	return nil
}

// ForceInitialize wipes every collection and initializes from scratch.
func (s *Seeder) ForceInitialize(ctx context.Context) error {
	s.logger.Warn().Msg("force initializing admin system")
	s.store.ClearAllData(ctx)
	return s.Initialize(ctx)
}

// Reset wipes every collection.
func (s *Seeder) Reset(ctx context.Context) {
	s.store.ClearAllData(ctx)
	s.logger.Warn().Msg("admin system reset")
}

func (s *Seeder) importLegacyArticles(ctx context.Context) error {
	if len(s.store.Articles(ctx)) > 0 {
		return nil
	}

	articles, err := legacyArticles(s.now())
	if err != nil {
		return err
	}
	s.store.SetArticles(ctx, articles)

	s.store.AddActivity(ctx, domain.ActivityEvent{
		ID:          uuid.NewString(),
		Type:        domain.ActivityArticleCreated,
		Description: fmt.Sprintf("Migrated %d existing articles to admin system", len(articles)),
		Timestamp:   s.now(),
		Metadata:    map[string]any{"count": len(articles)},
	})
	s.logger.Info().Int("count", len(articles)).Msg("imported legacy articles")
	return nil
}

// legacyArticles renders the embedded catalogue as published articles.
func legacyArticles(now time.Time) ([]domain.Article, error) {
	raw, err := dataFS.ReadFile("data/articles.json")
	if err != nil {
		return nil, err
	}
	var catalogue []legacyArticle
	if err := json.Unmarshal(raw, &catalogue); err != nil {
		return nil, fmt.Errorf("decode article catalogue: %w", err)
	}

	tmpl, err := template.New("article.md.tmpl").
		Funcs(template.FuncMap{"lower": strings.ToLower}).
		ParseFS(dataFS, "data/article.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse article template: %w", err)
	}

	articles := make([]domain.Article, 0, len(catalogue))
	for _, entry := range catalogue {
		published, err := time.Parse(time.DateOnly, entry.PublishDate)
		if err != nil {
			return nil, fmt.Errorf("article %q: %w", entry.Slug, err)
		}

		var body bytes.Buffer
		if err := tmpl.Execute(&body, entry); err != nil {
			return nil, fmt.Errorf("render article %q: %w", entry.Slug, err)
		}

		articles = append(articles, domain.Article{
			ID:          uuid.NewString(),
			Title:       entry.Title,
			Slug:        entry.Slug,
			Content:     body.String(),
			Summary:     entry.Summary,
			Category:    entry.Category,
			Tags:        entry.Tags,
			Status:      domain.StatusPublished,
			PublishedAt: &published,
			CreatedAt:   published,
			UpdatedAt:   now,
			ReadingTime: entry.ReadingTime,
		})
	}
	return articles, nil
}

func (s *Seeder) seedNotifications(ctx context.Context) {
	if len(s.store.Notifications(ctx)) > 0 {
		return
	}

	now := s.now()
	notifications := []domain.Notification{
		*domain.NewNotification(uuid.NewString(),
			"Welcome to Admin Dashboard",
			"Your admin dashboard is ready. You can now manage articles and notifications and review analytics.",
			domain.NotificationInfo, now),
		*domain.NewNotification(uuid.NewString(),
			"Security Reminder",
			"Please change the default admin credentials and use a strong password.",
			domain.NotificationWarn, now.Add(-time.Hour)),
		*domain.NewNotification(uuid.NewString(),
			"System Initialization Complete",
			"All admin systems were initialized and existing articles were migrated.",
			domain.NotificationInfo, now.Add(-2*time.Hour)),
	}
	s.store.SetNotifications(ctx, notifications)
	s.logger.Info().Int("count", len(notifications)).Msg("seeded notifications")
}

func (s *Seeder) seedPageViews(ctx context.Context) {
	if len(s.store.PageViews(ctx)) > 0 {
		return
	}

	views := SamplePageViews(s.now(), s.store.Articles(ctx), s.rng())
	s.store.SetPageViews(ctx, views)
	s.logger.Info().Int("generated", len(views)).Msg("seeded sample page views")
}

func (s *Seeder) rng() *rand.Rand {
	seed := s.cfg.SampleSeed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// SamplePageViews generates SampleDays of synthetic traffic ending at now,
// oldest first. Roughly 70% of views hit an article page.
func SamplePageViews(now time.Time, articles []domain.Article, rng *rand.Rand) []domain.PageView {
	now = now.UTC()
	today := now.Truncate(24 * time.Hour)

	var views []domain.PageView
	for i := 0; i < SampleDays; i++ {
		day := today.AddDate(0, 0, -i)
		span := 24 * time.Hour
		if i == 0 {
			span = now.Sub(day) + time.Second
		}

		count := rng.IntN(MaxSampleViewsPerDay)
		for j := 0; j < count; j++ {
			path := samplePages[rng.IntN(len(samplePages))]
			if len(articles) > 0 && rng.Float64() > 0.3 {
				path = domain.ArticlePathPrefix + articles[rng.IntN(len(articles))].Slug
			}
			offset := time.Duration(rng.Int64N(int64(span/time.Second))) * time.Second

			views = append(views, domain.PageView{
				ID:        uuid.NewString(),
				Path:      path,
				Timestamp: day.Add(offset),
				UserAgent: sampleUserAgent,
				IP:        sampleIP,
			})
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Timestamp.Before(views[j].Timestamp)
	})
	return views
}
