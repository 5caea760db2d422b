// Package entity defines the core domain types shared by the client: articles,
// feed pages, bookmark records, account users and the error taxonomy used across layers.
package entity

import (
	"strconv"
	"time"
)

// Language is the feed language requested from the news API.
type Language string

const (
	// LanguageEnglish selects English-language news.
	LanguageEnglish Language = "en"
	// LanguageNepali selects Nepali-language news.
	LanguageNepali Language = "np"
)

// DefaultPerPage is the page size the feed requests from the news API.
const DefaultPerPage = 30

// ParseLanguage converts user input into a supported Language.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageEnglish, LanguageNepali:
		return Language(s), nil
	default:
		return "", &ValidationError{Field: "language", Message: "must be one of: en, np"}
	}
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageNepali
}

// Article represents a news article as returned by the remote API.
// URL is the identity key. Articles are treated as immutable once received.
type Article struct {
	URL         string
	Title       string
	Summary     string
	ImageURL    *string
	PublishedAt *time.Time
	Category    string
	Source      string
	Language    Language
}

// Page is one server-paginated batch of articles.
type Page struct {
	PageNumber int
	TotalPages int
	Articles   []Article
}

// HasNext reports whether the server has more pages after this one.
func (p *Page) HasNext() bool {
	return p.PageNumber < p.TotalPages
}

// NewsRequest enumerates the parameters of a single news page request.
type NewsRequest struct {
	Page     int
	Language Language
	PerPage  int
}

// CacheKey returns the key identifying this request in a page cache.
func (r NewsRequest) CacheKey() string {
	return "news:" + string(r.Language) + ":" + strconv.Itoa(r.PerPage) + ":" + strconv.Itoa(r.Page)
}

// Validate checks the request before it is sent.
func (r NewsRequest) Validate() error {
	if r.Page < 1 {
		return &ValidationError{Field: "page", Message: "must be a positive integer"}
	}
	if r.PerPage < 1 {
		return &ValidationError{Field: "per_page", Message: "must be a positive integer"}
	}
	if !r.Language.Valid() {
		return &ValidationError{Field: "language", Message: "must be one of: en, np"}
	}
	return nil
}
