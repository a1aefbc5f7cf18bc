package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/inkstand/internal/domain"
)

// PageViewSink stores page views.
type PageViewSink interface {
	AddPageView(ctx context.Context, view domain.PageView)
}

// Tracker records page views with a fresh id and timestamp.
type Tracker struct {
	sink PageViewSink
	now  func() time.Time
}

// NewTracker creates a new Tracker. A nil now uses the UTC wall clock.
func NewTracker(sink PageViewSink, now func() time.Time) *Tracker {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Tracker{sink: sink, now: now}
}

// RecordPageView appends a view of path.
func (t *Tracker) RecordPageView(ctx context.Context, path, userAgent, ip string) domain.PageView {
	view := domain.PageView{
		ID:        uuid.NewString(),
		Path:      path,
		Timestamp: t.now(),
		UserAgent: userAgent,
		IP:        ip,
	}
	t.sink.AddPageView(ctx, view)
	return view
}
