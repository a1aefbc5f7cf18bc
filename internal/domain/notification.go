package domain

import "time"

// NotificationType is the severity of a notification.
type NotificationType string

const (
	NotificationInfo  NotificationType = "INFO"
	NotificationWarn  NotificationType = "WARN"
	NotificationError NotificationType = "ERROR"
)

// Notification is a message shown in the admin inbox.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewNotification creates an unread notification.
func NewNotification(id, title, body string, typ NotificationType, createdAt time.Time) *Notification {
	return &Notification{
		ID:        id,
		Title:     title,
		Body:      body,
		Type:      typ,
		CreatedAt: createdAt,
	}
}
