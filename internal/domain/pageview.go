package domain

import (
	"strings"
	"time"
)

// ArticlePathPrefix is the URL prefix under which article pages are served.
const ArticlePathPrefix = "/articles/"

// PageView is one entry of the append-only traffic log.
type PageView struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"userAgent,omitempty"`
	IP        string    `json:"ip,omitempty"`
}

// ArticleSlug returns the slug when the view is of an /articles/<slug> page.
func (pv *PageView) ArticleSlug() (string, bool) {
	slug, ok := strings.CutPrefix(pv.Path, ArticlePathPrefix)
	if !ok || slug == "" || strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}
