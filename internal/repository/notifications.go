package repository

import (
	"context"

	"github.com/prn-tf/inkstand/internal/domain"
)

// Notifications returns the inbox, most recent first.
func (r *Repository) Notifications(ctx context.Context) []domain.Notification {
	return list[domain.Notification](ctx, r, KeyNotifications)
}

// SetNotifications replaces the whole collection.
func (r *Repository) SetNotifications(ctx context.Context, notifications []domain.Notification) {
	r.mutate(ctx, KeyNotifications, func() {
		kvSet(ctx, r, KeyNotifications, notifications)
	})
}

// NotificationByID returns nil if no notification has id.
func (r *Repository) NotificationByID(ctx context.Context, id string) *domain.Notification {
	for _, n := range r.Notifications(ctx) {
		if n.ID == id {
			return &n
		}
	}
	return nil
}

// AddNotification inserts at the head.
func (r *Repository) AddNotification(ctx context.Context, notification domain.Notification) {
	update(ctx, r, KeyNotifications, func(items []domain.Notification) ([]domain.Notification, bool) {
		return append([]domain.Notification{notification}, items...), true
	})
}

// MarkNotificationRead sets isRead on one notification.
func (r *Repository) MarkNotificationRead(ctx context.Context, id string) {
	r.setRead(ctx, id, true)
}

// MarkNotificationUnread clears isRead on one notification.
func (r *Repository) MarkNotificationUnread(ctx context.Context, id string) {
	r.setRead(ctx, id, false)
}

func (r *Repository) setRead(ctx context.Context, id string, read bool) {
	update(ctx, r, KeyNotifications, func(items []domain.Notification) ([]domain.Notification, bool) {
		for i := range items {
			if items[i].ID == id {
				items[i].IsRead = read
				return items, true
			}
		}
		return items, false
	})
}

// MarkAllNotificationsRead sets isRead everywhere.
func (r *Repository) MarkAllNotificationsRead(ctx context.Context) {
	update(ctx, r, KeyNotifications, func(items []domain.Notification) ([]domain.Notification, bool) {
		changed := false
		for i := range items {
			if !items[i].IsRead {
				items[i].IsRead = true
				changed = true
			}
		}
		return items, changed
	})
}

// UnreadNotificationCount counts notifications not yet read.
func (r *Repository) UnreadNotificationCount(ctx context.Context) int {
	n := 0
	for _, item := range r.Notifications(ctx) {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// DeleteNotification removes one notification.
func (r *Repository) DeleteNotification(ctx context.Context, id string) {
	update(ctx, r, KeyNotifications, func(items []domain.Notification) ([]domain.Notification, bool) {
		kept := filter(items, func(n *domain.Notification) bool { return n.ID != id })
		return kept, len(kept) != len(items)
	})
}
