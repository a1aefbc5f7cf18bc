package domain

import (
	"time"
)

// ArticleStatus is the publication state of an article.
type ArticleStatus string

const (
	StatusPublished ArticleStatus = "PUBLISHED"
	StatusDraft     ArticleStatus = "DRAFT"
)

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	return s == StatusPublished || s == StatusDraft
}

// Article is a piece of site content.
//
// Slug uniqueness is only checked among non-archived published articles when an
// article is published; two drafts may share a slug.
type Article struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	Summary     string        `json:"summary,omitempty"`
	CoverImage  string        `json:"coverImage,omitempty"`
	Category    string        `json:"category"`
	Tags        []string      `json:"tags"`
	Status      ArticleStatus `json:"status"`
	PublishedAt *time.Time    `json:"publishedAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	ReadingTime string        `json:"readingTime,omitempty"`

	// IsArchived soft-deletes the article; ArchivedAt is set only while archived.
	IsArchived bool       `json:"isArchived"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

// IsPublished reports whether the article has been published.
func (a *Article) IsPublished() bool {
	return a.Status == StatusPublished
}

// IsDraft reports whether the article is still a draft.
func (a *Article) IsDraft() bool {
	return a.Status == StatusDraft
}

// IsLive reports whether the article is publicly visible.
func (a *Article) IsLive() bool {
	return a.IsPublished() && !a.IsArchived
}
