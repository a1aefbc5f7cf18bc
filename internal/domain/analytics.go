package domain

// DailyViews is the page-view count for one calendar day (YYYY-MM-DD, UTC).
type DailyViews struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// WeeklyViews is the page-view count for a seven day window labelled "start - end".
type WeeklyViews struct {
	Week  string `json:"week"`
	Views int    `json:"views"`
}

// TopArticle is an article ranked by page views.
type TopArticle struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Views int    `json:"views"`
}

// CategoryCount is the number of non-archived articles in a category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Analytics is the dashboard view computed from the stored collections.
type Analytics struct {
	DailyViews        []DailyViews    `json:"dailyViews"`
	WeeklyViews       []WeeklyViews   `json:"weeklyViews"`
	TotalViews        int             `json:"totalViews"`
	TotalArticles     int             `json:"totalArticles"`
	PublishedArticles int             `json:"publishedArticles"`
	DraftArticles     int             `json:"draftArticles"`
	ArchivedArticles  int             `json:"archivedArticles"`
	TopArticles       []TopArticle    `json:"topArticles"`
	CategoryBreakdown []CategoryCount `json:"categoryBreakdown"`
	RecentActivity    []ActivityEvent `json:"recentActivity"`
}
