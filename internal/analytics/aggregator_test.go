package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/inkstand/internal/domain"
)

var now = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

type fakeSource struct {
	articles []domain.Article
	views    []domain.PageView
	activity []domain.ActivityEvent
}

func (f *fakeSource) Articles(context.Context) []domain.Article       { return f.articles }
func (f *fakeSource) PageViews(context.Context) []domain.PageView     { return f.views }
func (f *fakeSource) Activity(context.Context) []domain.ActivityEvent { return f.activity }

func (f *fakeSource) AddPageView(_ context.Context, v domain.PageView) {
	f.views = append(f.views, v)
}

func view(path string, at time.Time) domain.PageView {
	return domain.PageView{ID: path + at.String(), Path: path, Timestamp: at}
}

func compute(src *fakeSource) domain.Analytics {
	return NewAggregator(src, func() time.Time { return now }, zerolog.Nop()).Compute(context.Background())
}

func TestCompute_Empty(t *testing.T) {
	got := compute(&fakeSource{})

	require.Len(t, got.DailyViews, DailyPoints)
	require.Len(t, got.WeeklyViews, WeeklyPoints)
	for _, d := range got.DailyViews {
		assert.Zero(t, d.Views)
	}
	for _, w := range got.WeeklyViews {
		assert.Zero(t, w.Views)
	}
	assert.NotNil(t, got.TopArticles)
	assert.Empty(t, got.TopArticles)
	assert.NotNil(t, got.RecentActivity)
	assert.Empty(t, got.RecentActivity)
	assert.NotNil(t, got.CategoryBreakdown)
	assert.Zero(t, got.TotalArticles)
	assert.Zero(t, got.TotalViews)
}

func TestCompute_DailyViews(t *testing.T) {
	src := &fakeSource{views: []domain.PageView{
		view("/", now),
		view("/", now.Add(-time.Hour)),
		view("/", now.AddDate(0, 0, -29)),
		view("/", now.AddDate(0, 0, -30)),
		view("/", now.Add(24*time.Hour)),
	}}

	got := compute(src)

	assert.Equal(t, "2024-05-17", got.DailyViews[0].Date)
	assert.Equal(t, 1, got.DailyViews[0].Views)
	assert.Equal(t, "2024-06-15", got.DailyViews[DailyPoints-1].Date)
	assert.Equal(t, 2, got.DailyViews[DailyPoints-1].Views)
	assert.Equal(t, 5, got.TotalViews)
}

func TestCompute_WeeklyViews(t *testing.T) {
	lastWeekStart := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{views: []domain.PageView{
		view("/", lastWeekStart),
		view("/", lastWeekStart.Add(-time.Second)),
		view("/", now),
		view("/", time.Date(2024, 4, 21, 0, 0, 0, 0, time.UTC)),
		view("/", time.Date(2024, 4, 20, 23, 0, 0, 0, time.UTC)),
	}}

	got := compute(src)

	assert.Equal(t, "2024-04-21 - 2024-04-27", got.WeeklyViews[0].Week)
	assert.Equal(t, 1, got.WeeklyViews[0].Views)
	assert.Equal(t, "2024-06-02 - 2024-06-08", got.WeeklyViews[WeeklyPoints-2].Week)
	assert.Equal(t, 1, got.WeeklyViews[WeeklyPoints-2].Views)
	assert.Equal(t, "2024-06-09 - 2024-06-15", got.WeeklyViews[WeeklyPoints-1].Week)
	assert.Equal(t, 2, got.WeeklyViews[WeeklyPoints-1].Views)
}

func TestCompute_TopArticles(t *testing.T) {
	src := &fakeSource{
		articles: []domain.Article{
			{Slug: "alpha", Title: "Alpha"},
			{Slug: "beta", Title: "Beta"},
		},
	}
	add := func(path string, n int) {
		for i := 0; i < n; i++ {
			src.views = append(src.views, view(path, now))
		}
	}
	add("/articles/beta", 2)
	add("/articles/alpha", 3)
	add("/articles/gone", 2)
	add("/articles/c", 1)
	add("/articles/d", 1)
	add("/articles/e", 1)
	add("/about", 10)
	add("/articles/", 4)

	got := compute(src)

	require.Len(t, got.TopArticles, TopArticleCount)
	assert.Equal(t, domain.TopArticle{Slug: "alpha", Title: "Alpha", Views: 3}, got.TopArticles[0])
	assert.Equal(t, domain.TopArticle{Slug: "beta", Title: "Beta", Views: 2}, got.TopArticles[1])
	assert.Equal(t, domain.TopArticle{Slug: "gone", Title: "gone", Views: 2}, got.TopArticles[2])
	assert.Equal(t, "c", got.TopArticles[3].Slug)
	assert.Equal(t, "d", got.TopArticles[4].Slug)
}

func TestCompute_TopArticleTitleFromFirstMatch(t *testing.T) {
	src := &fakeSource{
		articles: []domain.Article{
			{ID: "1", Slug: "dup", Title: ""},
			{ID: "2", Slug: "dup", Title: "Later Copy"},
			{ID: "3", Slug: "named", Title: "First"},
			{ID: "4", Slug: "named", Title: "Second"},
		},
		views: []domain.PageView{
			view("/articles/dup", now),
			view("/articles/named", now),
		},
	}

	got := compute(src)

	require.Len(t, got.TopArticles, 2)
	assert.Equal(t, "dup", got.TopArticles[0].Title)
	assert.Equal(t, "First", got.TopArticles[1].Title)
}

func TestCompute_ArticleCounts(t *testing.T) {
	src := &fakeSource{articles: []domain.Article{
		{Status: domain.StatusPublished, Category: "Law"},
		{Status: domain.StatusPublished, Category: "Law"},
		{Status: domain.StatusDraft, Category: "News"},
		{Status: domain.StatusPublished, Category: "Law", IsArchived: true},
		{Status: domain.StatusDraft, Category: "Tax", IsArchived: true},
	}}

	got := compute(src)

	assert.Equal(t, 3, got.TotalArticles)
	assert.Equal(t, 2, got.PublishedArticles)
	assert.Equal(t, 1, got.DraftArticles)
	assert.Equal(t, 2, got.ArchivedArticles)
	assert.Equal(t, []domain.CategoryCount{
		{Category: "Law", Count: 2},
		{Category: "News", Count: 1},
	}, got.CategoryBreakdown)
}

func TestCompute_RecentActivity(t *testing.T) {
	src := &fakeSource{}
	for i := 0; i < 15; i++ {
		src.activity = append(src.activity, domain.ActivityEvent{ID: fmt.Sprintf("e%d", i)})
	}

	got := compute(src)

	require.Len(t, got.RecentActivity, RecentActivityCount)
	assert.Equal(t, "e0", got.RecentActivity[0].ID)
	assert.Equal(t, "e9", got.RecentActivity[9].ID)
}

func TestTracker_RecordPageView(t *testing.T) {
	src := &fakeSource{}
	tracker := NewTracker(src, func() time.Time { return now })

	pv := tracker.RecordPageView(context.Background(), "/articles/x", "ua", "10.0.0.1")

	require.Len(t, src.views, 1)
	assert.Equal(t, pv, src.views[0])
	assert.NotEmpty(t, pv.ID)
	assert.Equal(t, now, pv.Timestamp)
	assert.Equal(t, "ua", pv.UserAgent)
}
