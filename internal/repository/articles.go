package repository

import (
	"context"
	"encoding/json"

	"github.com/prn-tf/inkstand/internal/domain"
)

// Articles returns every stored article, archived ones included.
func (r *Repository) Articles(ctx context.Context) []domain.Article {
	return list[domain.Article](ctx, r, KeyArticles)
}

// SetArticles replaces the whole collection.
func (r *Repository) SetArticles(ctx context.Context, articles []domain.Article) {
	r.mutate(ctx, KeyArticles, func() {
		kvSet(ctx, r, KeyArticles, articles)
	})
}

// ArticleByID returns the article regardless of its archive state.
func (r *Repository) ArticleByID(ctx context.Context, id string) *domain.Article {
	for _, a := range r.Articles(ctx) {
		if a.ID == id {
			return &a
		}
	}
	return nil
}

// ArticleBySlug returns the first non-archived article with slug.
func (r *Repository) ArticleBySlug(ctx context.Context, slug string) *domain.Article {
	for _, a := range r.Articles(ctx) {
		if a.Slug == slug && !a.IsArchived {
			return &a
		}
	}
	return nil
}

// PublishedArticles returns non-archived published articles.
func (r *Repository) PublishedArticles(ctx context.Context) []domain.Article {
	return filter(r.Articles(ctx), (*domain.Article).IsLive)
}

// DraftArticles returns non-archived drafts.
func (r *Repository) DraftArticles(ctx context.Context) []domain.Article {
	return filter(r.Articles(ctx), func(a *domain.Article) bool {
		return a.IsDraft() && !a.IsArchived
	})
}

// ArchivedArticles returns archived articles of either status.
func (r *Repository) ArchivedArticles(ctx context.Context) []domain.Article {
	return filter(r.Articles(ctx), func(a *domain.Article) bool {
		return a.IsArchived
	})
}

// AddArticle appends an article.
func (r *Repository) AddArticle(ctx context.Context, article domain.Article) {
	update(ctx, r, KeyArticles, func(articles []domain.Article) ([]domain.Article, bool) {
		return append(articles, article), true
	})
}

// UpdateArticle replaces the article with the same id.
func (r *Repository) UpdateArticle(ctx context.Context, article domain.Article) {
	r.modifyArticle(ctx, article.ID, func(a *domain.Article) {
		*a = article
	})
}

// ArchiveArticle marks an article archived and stamps archivedAt.
func (r *Repository) ArchiveArticle(ctx context.Context, id string) {
	r.modifyArticle(ctx, id, func(a *domain.Article) {
		now := r.now()
		a.IsArchived = true
		a.ArchivedAt = &now
		a.UpdatedAt = now
	})
}

// UnarchiveArticle restores an article and clears archivedAt.
func (r *Repository) UnarchiveArticle(ctx context.Context, id string) {
	r.modifyArticle(ctx, id, func(a *domain.Article) {
		a.IsArchived = false
		a.ArchivedAt = nil
		a.UpdatedAt = r.now()
	})
}

// DeleteArticle removes an article permanently.
func (r *Repository) DeleteArticle(ctx context.Context, id string) {
	update(ctx, r, KeyArticles, func(articles []domain.Article) ([]domain.Article, bool) {
		kept := filter(articles, func(a *domain.Article) bool { return a.ID != id })
		return kept, len(kept) != len(articles)
	})
}

func (r *Repository) modifyArticle(ctx context.Context, id string, fn func(*domain.Article)) {
	update(ctx, r, KeyArticles, func(articles []domain.Article) ([]domain.Article, bool) {
		for i := range articles {
			if articles[i].ID == id {
				fn(&articles[i])
				return articles, true
			}
		}
		return articles, false
	})
}

// MigrateArticles works on the raw documents so that a missing isArchived
// field can be told apart from an explicit false.
func (r *Repository) MigrateArticles(ctx context.Context) int {
	migrated := 0
	r.mutate(ctx, KeyArticles, func() {
		data := r.store.GetRaw(ctx, KeyArticles)
		if len(data) == 0 {
			return
		}

		var records []map[string]json.RawMessage
		if err := json.Unmarshal(data, &records); err != nil {
			r.logger.Warn().Err(err).Msg("skipping article migration: undecodable collection")
			return
		}

		for _, rec := range records {
			if rec == nil {
				continue
			}
			if _, ok := rec["isArchived"]; !ok {
				rec["isArchived"] = json.RawMessage("false")
				migrated++
			}
		}
		if migrated == 0 {
			return
		}

		out, err := json.Marshal(records)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to encode migrated articles")
			migrated = 0
			return
		}
		r.store.SetRaw(ctx, KeyArticles, out)
		r.logger.Info().Int("migrated", migrated).Msg("migrated articles")
	})
	return migrated
}
