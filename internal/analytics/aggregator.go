// Package analytics computes the dashboard view from stored collections and
// records page views.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/inkstand/internal/domain"
)

const (
	// DailyPoints is the number of trailing days in Analytics.DailyViews.
	DailyPoints = 30

	// WeeklyPoints is the number of trailing 7-day windows in Analytics.WeeklyViews.
	WeeklyPoints = 8

	// TopArticleCount caps Analytics.TopArticles.
	TopArticleCount = 5

	// RecentActivityCount caps Analytics.RecentActivity.
	RecentActivityCount = 10

	dateLayout = "2006-01-02"
)

// Source is the read side the aggregator needs.
type Source interface {
	Articles(ctx context.Context) []domain.Article
	PageViews(ctx context.Context) []domain.PageView
	Activity(ctx context.Context) []domain.ActivityEvent
}

// Aggregator recomputes analytics on every call. It keeps no state.
type Aggregator struct {
	source Source
	now    func() time.Time
	logger zerolog.Logger
}

// NewAggregator creates a new Aggregator. A nil now uses the UTC wall clock.
func NewAggregator(source Source, now func() time.Time, logger zerolog.Logger) *Aggregator {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Aggregator{
		source: source,
		now:    now,
		logger: logger.With().Str("component", "analytics").Logger(),
	}
}

// Compute builds the dashboard view. Days are UTC calendar days.
func (a *Aggregator) Compute(ctx context.Context) domain.Analytics {
	articles := a.source.Articles(ctx)
	views := a.source.PageViews(ctx)
	activity := a.source.Activity(ctx)

	today := a.now().UTC().Truncate(24 * time.Hour)

	perDay := make(map[string]int, DailyPoints)
	for _, pv := range views {
		perDay[pv.Timestamp.UTC().Format(dateLayout)]++
	}

	result := domain.Analytics{
		DailyViews:        dailyViews(today, perDay),
		WeeklyViews:       weeklyViews(today, perDay),
		TotalViews:        len(views),
		TopArticles:       topArticles(articles, views),
		CategoryBreakdown: categoryBreakdown(articles),
		RecentActivity:    recentActivity(activity),
	}

	for i := range articles {
		art := &articles[i]
		if art.IsArchived {
			result.ArchivedArticles++
			continue
		}
		result.TotalArticles++
		switch art.Status {
		case domain.StatusPublished:
			result.PublishedArticles++
		case domain.StatusDraft:
			result.DraftArticles++
		}
	}

	a.logger.Debug().
		Int("page_views", len(views)).
		Int("articles", len(articles)).
		Msg("computed analytics")

	return result
}

// dailyViews returns DailyPoints days ending today, oldest first.
func dailyViews(today time.Time, perDay map[string]int) []domain.DailyViews {
	out := make([]domain.DailyViews, 0, DailyPoints)
	for i := DailyPoints - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(dateLayout)
		out = append(out, domain.DailyViews{Date: date, Views: perDay[date]})
	}
	return out
}

// weeklyViews returns WeeklyPoints non-overlapping 7-day windows, the last
// one ending today, oldest first. Bounds are inclusive calendar days.
func weeklyViews(today time.Time, perDay map[string]int) []domain.WeeklyViews {
	out := make([]domain.WeeklyViews, 0, WeeklyPoints)
	for w := WeeklyPoints - 1; w >= 0; w-- {
		end := today.AddDate(0, 0, -7*w)
		start := end.AddDate(0, 0, -6)

		count := 0
		for d := 0; d < 7; d++ {
			count += perDay[start.AddDate(0, 0, d).Format(dateLayout)]
		}
		out = append(out, domain.WeeklyViews{
			Week:  start.Format(dateLayout) + " - " + end.Format(dateLayout),
			Views: count,
		})
	}
	return out
}

// topArticles ranks article slugs by views. Ties keep first-seen order.
func topArticles(articles []domain.Article, views []domain.PageView) []domain.TopArticle {
	counts := make(map[string]int)
	var order []string
	for i := range views {
		slug, ok := views[i].ArticleSlug()
		if !ok {
			continue
		}
		if _, seen := counts[slug]; !seen {
			order = append(order, slug)
		}
		counts[slug]++
	}

	// The first article with a slug names it, even when that title is empty.
	titles := make(map[string]string, len(articles))
	for _, art := range articles {
		if _, ok := titles[art.Slug]; !ok {
			titles[art.Slug] = art.Title
		}
	}

	out := make([]domain.TopArticle, 0, len(order))
	for _, slug := range order {
		title := titles[slug]
		if title == "" {
			title = slug
		}
		out = append(out, domain.TopArticle{Slug: slug, Title: title, Views: counts[slug]})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	if len(out) > TopArticleCount {
		out = out[:TopArticleCount]
	}
	return out
}

// categoryBreakdown counts non-archived articles per category, largest first.
func categoryBreakdown(articles []domain.Article) []domain.CategoryCount {
	counts := make(map[string]int)
	for _, art := range articles {
		if !art.IsArchived {
			counts[art.Category]++
		}
	}

	out := make([]domain.CategoryCount, 0, len(counts))
	for category, n := range counts {
		out = append(out, domain.CategoryCount{Category: category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func recentActivity(activity []domain.ActivityEvent) []domain.ActivityEvent {
	n := min(len(activity), RecentActivityCount)
	out := make([]domain.ActivityEvent, n)
	copy(out, activity[:n])
	return out
}
