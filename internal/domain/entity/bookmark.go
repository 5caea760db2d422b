package entity

import (
	"time"

	"github.com/samber/lo"
)

// Defaults applied when an article is missing optional fields at bookmark time.
const (
	DefaultBookmarkCategory = "general"
	DefaultBookmarkSource   = "Unknown"
	DefaultBookmarkLanguage = LanguageEnglish
)

// BookmarkRecord is the normalized payload sent to the bookmark "add" endpoint.
// Every field is populated; optional article fields are replaced by defaults.
type BookmarkRecord struct {
	ArticleURL  string    `json:"article_url"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	ImageURL    string    `json:"image_url"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	Language    Language  `json:"language"`
}

// NewBookmarkRecord builds the normalized record for a, using now when the
// article has no publication time.
func NewBookmarkRecord(a Article, now time.Time) BookmarkRecord {
	rec := BookmarkRecord{
		ArticleURL:  a.URL,
		Title:       a.Title,
		Summary:     a.Summary,
		ImageURL:    lo.FromPtr(a.ImageURL),
		PublishedAt: now,
		Category:    lo.Ternary(a.Category == "", DefaultBookmarkCategory, a.Category),
		Source:      lo.Ternary(a.Source == "", DefaultBookmarkSource, a.Source),
		Language:    lo.Ternary(a.Language == "", DefaultBookmarkLanguage, a.Language),
	}
	if a.PublishedAt != nil && !a.PublishedAt.IsZero() {
		rec.PublishedAt = *a.PublishedAt
	}
	return rec
}

// BookmarkSet is the client's copy of the user's bookmarks, keyed by article URL.
// It is never treated as authoritative; it is replaced wholesale from the server.
type BookmarkSet struct {
	byURL map[string]Article
	order []string
}

// NewBookmarkSet indexes articles by URL, keeping the server order.
// Later duplicates of a URL are ignored.
func NewBookmarkSet(articles []Article) BookmarkSet {
	unique := lo.UniqBy(articles, func(a Article) string { return a.URL })
	return BookmarkSet{
		byURL: lo.KeyBy(unique, func(a Article) string { return a.URL }),
		order: lo.Map(unique, func(a Article, _ int) string { return a.URL }),
	}
}

// Contains reports whether url is bookmarked.
func (s BookmarkSet) Contains(url string) bool {
	_, ok := s.byURL[url]
	return ok
}

// Get returns the bookmarked copy of the article stored under url.
func (s BookmarkSet) Get(url string) (Article, bool) {
	a, ok := s.byURL[url]
	return a, ok
}

// Len returns the number of bookmarks in the set.
func (s BookmarkSet) Len() int {
	return len(s.order)
}

// Articles returns the bookmarked articles in server order.
func (s BookmarkSet) Articles() []Article {
	return lo.Map(s.order, func(url string, _ int) Article { return s.byURL[url] })
}
