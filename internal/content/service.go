// Package content implements the article editing workflow on top of the
// repository: validation, slugs, publishing, archiving and the audit trail.
package content

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/inkstand/internal/domain"
	"github.com/prn-tf/inkstand/internal/repository"
)

const (
	// MaxTitleLength is the longest accepted title, in characters.
	MaxTitleLength = 160

	// WordsPerMinute drives the reading time estimate.
	WordsPerMinute = 200
)

// Store is the persistence the content service needs.
type Store interface {
	repository.ArticleRepository
	repository.ActivityRepository
}

// ArticleInput is the editable part of an article.
type ArticleInput struct {
	Title       string               `json:"title"`
	Slug        string               `json:"slug"`
	Content     string               `json:"content"`
	Summary     string               `json:"summary"`
	CoverImage  string               `json:"coverImage"`
	Category    string               `json:"category"`
	Tags        []string             `json:"tags"`
	Status      domain.ArticleStatus `json:"status"`
	ReadingTime string               `json:"readingTime"`
}

// Validate checks the fields that do not depend on other articles.
func (in ArticleInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title,
			validation.By(notBlank("Title is required")),
			validation.RuneLength(0, MaxTitleLength).Error("Title must be 160 characters or less")),
		validation.Field(&in.Content, validation.By(notBlank("Content is required"))),
		validation.Field(&in.Category, validation.By(notBlank("Category is required"))),
		validation.Field(&in.Status, validation.By(func(v any) error {
			if s := v.(domain.ArticleStatus); !s.Valid() {
				return fmt.Errorf("unknown status %q", s)
			}
			return nil
		})),
	)
}

func notBlank(message string) validation.RuleFunc {
	return func(v any) error {
		if strings.TrimSpace(v.(string)) == "" {
			return validation.NewError("validation_required", message)
		}
		return nil
	}
}

// Service manages articles.
type Service struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new content Service.
func NewService(store Store, logger zerolog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		store:  store,
		logger: logger.With().Str("service", "content").Logger(),
		now:    now,
	}
}

// Create validates input and stores a new article.
func (s *Service) Create(ctx context.Context, in ArticleInput) (*domain.Article, error) {
	in = normalize(in)
	if err := s.validate(ctx, in, ""); err != nil {
		return nil, err
	}

	now := s.now()
	article := domain.Article{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	apply(&article, in, now)
	if article.IsPublished() {
		article.PublishedAt = &now
	}

	s.store.AddArticle(ctx, article)

	typ, verb := domain.ActivityArticleCreated, "Created"
	if article.IsPublished() {
		typ, verb = domain.ActivityArticlePublished, "Published"
	}
	s.logActivity(ctx, typ, fmt.Sprintf("%s article: %s", verb, article.Title), article)

	s.logger.Info().
		Str("article_id", article.ID).
		Str("slug", article.Slug).
		Str("status", string(article.Status)).
		Msg("article created")

	return &article, nil
}

// Update replaces the editable fields of an existing article.
// The first publication time is kept once set.
func (s *Service) Update(ctx context.Context, id string, in ArticleInput) (*domain.Article, error) {
	existing := s.store.ArticleByID(ctx, id)
	if existing == nil {
		return nil, domain.NewDomainError(domain.ErrArticleNotFound, "cannot update", id)
	}

	in = normalize(in)
	if err := s.validate(ctx, in, id); err != nil {
		return nil, err
	}

	now := s.now()
	article := *existing
	apply(&article, in, now)
	if article.IsPublished() && article.PublishedAt == nil {
		article.PublishedAt = &now
	}

	s.store.UpdateArticle(ctx, article)
	s.logActivity(ctx, domain.ActivityArticleUpdated, "Updated article: "+article.Title, article)

	s.logger.Info().Str("article_id", id).Str("status", string(article.Status)).Msg("article updated")
	return &article, nil
}

// Publish turns a draft into a published article.
func (s *Service) Publish(ctx context.Context, id string) (*domain.Article, error) {
	existing := s.store.ArticleByID(ctx, id)
	if existing == nil {
		return nil, domain.NewDomainError(domain.ErrArticleNotFound, "cannot publish", id)
	}
	if existing.IsPublished() {
		return existing, nil
	}
	if s.slugTaken(ctx, existing.Slug, id) {
		return nil, domain.NewDomainError(domain.ErrSlugTaken, "cannot publish", existing.Slug)
	}

	now := s.now()
	article := *existing
	article.Status = domain.StatusPublished
	article.UpdatedAt = now
	if article.PublishedAt == nil {
		article.PublishedAt = &now
	}

	s.store.UpdateArticle(ctx, article)
	s.logActivity(ctx, domain.ActivityArticlePublished, "Published article: "+article.Title, article)

	s.logger.Info().Str("article_id", id).Str("slug", article.Slug).Msg("article published")
	return &article, nil
}

// Archive hides an article from every public listing.
func (s *Service) Archive(ctx context.Context, id string) error {
	article := s.store.ArticleByID(ctx, id)
	if article == nil {
		return domain.NewDomainError(domain.ErrArticleNotFound, "cannot archive", id)
	}
	s.store.ArchiveArticle(ctx, id)
	s.logActivity(ctx, domain.ActivityArticleUpdated, "Article archived", *article)
	s.logger.Info().Str("article_id", id).Msg("article archived")
	return nil
}

// Unarchive restores an archived article.
func (s *Service) Unarchive(ctx context.Context, id string) error {
	article := s.store.ArticleByID(ctx, id)
	if article == nil {
		return domain.NewDomainError(domain.ErrArticleNotFound, "cannot unarchive", id)
	}
	s.store.UnarchiveArticle(ctx, id)
	s.logActivity(ctx, domain.ActivityArticleUpdated, "Article unarchived", *article)
	s.logger.Info().Str("article_id", id).Msg("article unarchived")
	return nil
}

// Delete permanently removes an article.
func (s *Service) Delete(ctx context.Context, id string) error {
	article := s.store.ArticleByID(ctx, id)
	if article == nil {
		return domain.NewDomainError(domain.ErrArticleNotFound, "cannot delete", id)
	}
	s.store.DeleteArticle(ctx, id)
	s.logActivity(ctx, domain.ActivityArticleUpdated, "Deleted article: "+article.Title, *article)
	s.logger.Info().Str("article_id", id).Msg("article deleted")
	return nil
}

func (s *Service) validate(ctx context.Context, in ArticleInput, id string) error {
	err := in.Validate()
	fields := map[string]error{}
	if errs, ok := err.(validation.Errors); ok {
		fields = errs
	} else if err != nil {
		return err
	}

	if in.Status == domain.StatusPublished && s.slugTaken(ctx, in.Slug, id) {
		fields["slug"] = validation.NewError("validation_slug_taken", "This slug is already in use by another published article")
	}
	return domain.FieldErrors(fields)
}

// slugTaken reports whether another live published article uses slug.
func (s *Service) slugTaken(ctx context.Context, slug, id string) bool {
	for _, a := range s.store.PublishedArticles(ctx) {
		if a.Slug == slug && a.ID != id {
			return true
		}
	}
	return false
}

func (s *Service) logActivity(ctx context.Context, typ domain.ActivityType, description string, article domain.Article) {
	s.store.AddActivity(ctx, domain.ActivityEvent{
		ID:          uuid.NewString(),
		Type:        typ,
		Description: description,
		Timestamp:   s.now(),
		Metadata: map[string]any{
			"articleId": article.ID,
			"status":    string(article.Status),
		},
	})
}

func normalize(in ArticleInput) ArticleInput {
	if in.Status == "" {
		in.Status = domain.StatusDraft
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	if in.ReadingTime == "" {
		in.ReadingTime = ReadingTime(in.Content)
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	return in
}

func apply(a *domain.Article, in ArticleInput, now time.Time) {
	a.Title = in.Title
	a.Slug = in.Slug
	a.Content = in.Content
	a.Summary = in.Summary
	a.CoverImage = in.CoverImage
	a.Category = in.Category
	a.Tags = in.Tags
	a.Status = in.Status
	a.ReadingTime = in.ReadingTime
	a.UpdatedAt = now
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify derives a URL slug from a title: lowercase ASCII letters, digits
// and single dashes.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = strings.TrimSpace(slug)
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ReadingTime estimates how long content takes to read, e.g. "3 min read".
func ReadingTime(content string) string {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	return fmt.Sprintf("%d min read", max(minutes, 1))
}
