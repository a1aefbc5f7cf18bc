// Package repository defines typed access to every stored collection.
//
// Reads never fail: a missing or unreadable collection reads as empty.
// Mutations are fire-and-forget and run under a per-collection lock so that
// concurrent writers cannot interleave their read-modify-write cycles.
// Updates and deletes of unknown ids are silent no-ops.
package repository

import (
	"context"

	"github.com/prn-tf/inkstand/internal/domain"
)

// UserRepository defines operations for user accounts.
type UserRepository interface {
	// Users returns every stored user.
	Users(ctx context.Context) []domain.User

	// SetUsers replaces the whole collection.
	SetUsers(ctx context.Context, users []domain.User)

	// UserByID returns nil if no user has id.
	UserByID(ctx context.Context, id string) *domain.User

	// UserByEmailOrUsername matches either field case-insensitively.
	// The first match in storage order wins.
	UserByEmailOrUsername(ctx context.Context, identifier string) *domain.User

	// UpdateUser replaces the user with the same id.
	UpdateUser(ctx context.Context, user domain.User)
}

// ArticleRepository defines operations for articles.
type ArticleRepository interface {
	Articles(ctx context.Context) []domain.Article
	SetArticles(ctx context.Context, articles []domain.Article)

	// ArticleByID ignores the archive state.
	ArticleByID(ctx context.Context, id string) *domain.Article

	// ArticleBySlug never returns an archived article.
	ArticleBySlug(ctx context.Context, slug string) *domain.Article

	// PublishedArticles and DraftArticles exclude archived articles.
	PublishedArticles(ctx context.Context) []domain.Article
	DraftArticles(ctx context.Context) []domain.Article
	ArchivedArticles(ctx context.Context) []domain.Article

	AddArticle(ctx context.Context, article domain.Article)
	UpdateArticle(ctx context.Context, article domain.Article)
	ArchiveArticle(ctx context.Context, id string)
	UnarchiveArticle(ctx context.Context, id string)
	DeleteArticle(ctx context.Context, id string)

	// MigrateArticles adds isArchived=false to records stored without it and
	// returns how many records changed. A second run changes nothing.
	MigrateArticles(ctx context.Context) int
}

// NotificationRepository defines operations for the admin inbox.
type NotificationRepository interface {
	// Notifications are returned most recent first.
	Notifications(ctx context.Context) []domain.Notification
	SetNotifications(ctx context.Context, notifications []domain.Notification)
	NotificationByID(ctx context.Context, id string) *domain.Notification

	// AddNotification inserts at the head.
	AddNotification(ctx context.Context, notification domain.Notification)
	MarkNotificationRead(ctx context.Context, id string)
	MarkNotificationUnread(ctx context.Context, id string)
	MarkAllNotificationsRead(ctx context.Context)
	UnreadNotificationCount(ctx context.Context) int
	DeleteNotification(ctx context.Context, id string)
}

// PageViewRepository defines operations for the capped traffic log.
type PageViewRepository interface {
	// PageViews are returned oldest first.
	PageViews(ctx context.Context) []domain.PageView
	SetPageViews(ctx context.Context, views []domain.PageView)

	// AddPageView appends and keeps only the newest MaxPageViews entries.
	AddPageView(ctx context.Context, view domain.PageView)
}

// ActivityRepository defines operations for the capped audit trail.
type ActivityRepository interface {
	// Activity is returned most recent first.
	Activity(ctx context.Context) []domain.ActivityEvent

	// AddActivity inserts at the head and keeps only MaxActivity entries.
	AddActivity(ctx context.Context, event domain.ActivityEvent)
}

// SessionRepository defines operations on the single session slot and the
// CSRF token slot.
type SessionRepository interface {
	Session(ctx context.Context) *domain.AuthSession
	SetSession(ctx context.Context, session domain.AuthSession)
	ClearSession(ctx context.Context)

	CSRFToken(ctx context.Context) string
	SetCSRFToken(ctx context.Context, token string)
	ClearCSRFToken(ctx context.Context)
}

// Store is the complete data access surface.
type Store interface {
	UserRepository
	ArticleRepository
	NotificationRepository
	PageViewRepository
	ActivityRepository
	SessionRepository

	// ClearAllData removes every collection in one backend call.
	ClearAllData(ctx context.Context)
}
