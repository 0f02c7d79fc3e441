package domain

import "time"

// NewsCategory labels an article with one of the curated topical sections.
type NewsCategory string

const (
	CategorySociety    NewsCategory = "SOCIETY"
	CategoryEconomy    NewsCategory = "ECONOMY"
	CategoryPolitics   NewsCategory = "POLITICS"
	CategoryCulture    NewsCategory = "CULTURE"
	CategoryIT         NewsCategory = "IT"
	CategoryUnassigned NewsCategory = "UNASSIGNED"
)

// Categories lists the assignable sections in their fixed presentation order.
func Categories() []NewsCategory {
	return []NewsCategory{CategorySociety, CategoryEconomy, CategoryPolitics, CategoryCulture, CategoryIT}
}

// SearchResult is one metadata entry returned by the search API for a keyword.
// PubDate keeps the raw upstream string; parse it with ParsePubDate when the
// article is assembled.
type SearchResult struct {
	Title        string
	OriginalLink string
	Link         string
	Description  string
	PubDate      string
}

// ArticleDetail carries the fields crawled from the article page itself.
type ArticleDetail struct {
	Content    string
	ImageURL   string
	Journalist string
	MediaName  string
}

// CandidateArticle is an assembled, not-yet-scored article. It only exists once
// both the search metadata and the crawled detail are present.
type CandidateArticle struct {
	Meta        SearchResult
	Detail      ArticleDetail
	PublishedAt time.Time
	CreatedAt   time.Time
	Category    NewsCategory
}

// ScoredArticle is a candidate after the external analysis collaborator has
// assigned a relevance score and a category.
type ScoredArticle struct {
	Article  CandidateArticle
	Score    int
	Category NewsCategory
}

// StoredArticle is a candidate after persistence, carrying its storage ID.
type StoredArticle struct {
	ID int64
	CandidateArticle
}

// pubDateLayout matches the search API date format, e.g.
// "Tue, 29 Jul 2025 18:48:00 +0900".
const pubDateLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// ParsePubDate converts a raw pubDate string to local time. The second return
// is false when the string did not parse and the current time was substituted.
func ParsePubDate(raw string) (time.Time, bool) {
	parsed, err := time.Parse(pubDateLayout, raw)
	if err != nil {
		return time.Now(), false
	}
	return parsed.Local(), true
}
