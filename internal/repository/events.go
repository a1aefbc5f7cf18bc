package repository

import (
	"context"

	"github.com/prn-tf/inkstand/internal/domain"
)

// PageViews returns the traffic log, oldest first.
func (r *Repository) PageViews(ctx context.Context) []domain.PageView {
	return list[domain.PageView](ctx, r, KeyPageViews)
}

// SetPageViews replaces the log, keeping only the newest MaxPageViews entries.
func (r *Repository) SetPageViews(ctx context.Context, views []domain.PageView) {
	r.mutate(ctx, KeyPageViews, func() {
		kvSet(ctx, r, KeyPageViews, newest(views, MaxPageViews))
	})
}

// AddPageView appends one view and evicts the oldest beyond MaxPageViews.
func (r *Repository) AddPageView(ctx context.Context, view domain.PageView) {
	update(ctx, r, KeyPageViews, func(views []domain.PageView) ([]domain.PageView, bool) {
		return newest(append(views, view), MaxPageViews), true
	})
	r.metrics.RecordPageView()
}

// Activity returns the audit trail, most recent first.
func (r *Repository) Activity(ctx context.Context) []domain.ActivityEvent {
	return list[domain.ActivityEvent](ctx, r, KeyActivity)
}

// AddActivity inserts one event at the head and keeps MaxActivity entries.
func (r *Repository) AddActivity(ctx context.Context, event domain.ActivityEvent) {
	update(ctx, r, KeyActivity, func(events []domain.ActivityEvent) ([]domain.ActivityEvent, bool) {
		events = append([]domain.ActivityEvent{event}, events...)
		if len(events) > MaxActivity {
			events = events[:MaxActivity]
		}
		return events, true
	})
	r.metrics.RecordActivity(string(event.Type))
}

// newest keeps the last limit items.
func newest[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[len(items)-limit:]
	}
	return items
}
