package domain

import "time"

// ActivityType classifies an activity event.
type ActivityType string

const (
	ActivityArticleCreated   ActivityType = "ARTICLE_CREATED"
	ActivityArticlePublished ActivityType = "ARTICLE_PUBLISHED"
	ActivityArticleUpdated   ActivityType = "ARTICLE_UPDATED"
	ActivityLogin            ActivityType = "LOGIN"
)

// ActivityEvent is one entry of the most-recent-first audit trail.
type ActivityEvent struct {
	ID          string         `json:"id"`
	Type        ActivityType   `json:"type"`
	Description string         `json:"description"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
