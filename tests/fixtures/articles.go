// Package fixtures provides reusable test data generators for the client's tests.
// Generated data is deterministic so that assertions can compare exact values.
package fixtures

import (
	"fmt"
	"html"
	"strings"
	"time"

	"newsclient/internal/domain/entity"
)

// BaseTime is the publication time of the first generated article.
// Each following article is one hour older.
var BaseTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// ArticleOption is a functional option for customizing test articles.
type ArticleOption func(*entity.Article)

// NewTestArticle creates an Article with sensible defaults.
//
// Example:
//
//	a := NewTestArticle()
//	a := NewTestArticle(WithURL("https://news.example.com/x"), WithLanguage(entity.LanguageNepali))
func NewTestArticle(opts ...ArticleOption) entity.Article {
	published := BaseTime
	image := "https://img.example.com/1.jpg"
	a := entity.Article{
		URL:         "https://news.example.com/en/1",
		Title:       "Test Article 1",
		Summary:     "<p>Summary of <b>article</b> 1.</p>",
		ImageURL:    &image,
		PublishedAt: &published,
		Category:    "technology",
		Source:      "Example News",
		Language:    entity.LanguageEnglish,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// WithURL sets the URL (identity key) of the article.
func WithURL(url string) ArticleOption {
	return func(a *entity.Article) { a.URL = url }
}

// WithTitle sets the title of the article.
func WithTitle(title string) ArticleOption {
	return func(a *entity.Article) { a.Title = title }
}

// WithSummary sets the summary of the article.
func WithSummary(summary string) ArticleOption {
	return func(a *entity.Article) { a.Summary = summary }
}

// WithLanguage sets the language of the article.
func WithLanguage(lang entity.Language) ArticleOption {
	return func(a *entity.Article) { a.Language = lang }
}

// WithCategory sets the category of the article.
func WithCategory(category string) ArticleOption {
	return func(a *entity.Article) { a.Category = category }
}

// WithSource sets the source of the article.
func WithSource(source string) ArticleOption {
	return func(a *entity.Article) { a.Source = source }
}

// WithPublishedAt sets the publication time. Nil leaves it unset.
func WithPublishedAt(t *time.Time) ArticleOption {
	return func(a *entity.Article) { a.PublishedAt = t }
}

// WithImageURL sets the image URL. Nil leaves it unset.
func WithImageURL(url *string) ArticleOption {
	return func(a *entity.Article) { a.ImageURL = url }
}

// Bare strips every optional field, leaving only URL, title and summary.
func Bare() ArticleOption {
	return func(a *entity.Article) {
		a.ImageURL = nil
		a.PublishedAt = nil
		a.Category = ""
		a.Source = ""
		a.Language = ""
	}
}

// ArticleURL returns the URL of the i-th generated article for lang (1-based).
func ArticleURL(lang entity.Language, i int) string {
	return fmt.Sprintf("https://news.example.com/%s/%d", lang, i)
}

// Articles generates n articles for lang, numbered from 1, newest first.
func Articles(lang entity.Language, n int) []entity.Article {
	return ArticlesFrom(lang, 1, n)
}

// ArticlesFrom generates n articles for lang numbered from start.
func ArticlesFrom(lang entity.Language, start, n int) []entity.Article {
	out := make([]entity.Article, 0, n)
	for i := start; i < start+n; i++ {
		published := BaseTime.Add(-time.Duration(i-1) * time.Hour)
		out = append(out, NewTestArticle(
			WithURL(ArticleURL(lang, i)),
			WithTitle(fmt.Sprintf("%s headline %d", strings.ToUpper(string(lang)), i)),
			WithSummary(fmt.Sprintf("<p>Summary of <b>article</b> %d.</p>", i)),
			WithLanguage(lang),
			WithPublishedAt(&published),
		))
	}
	return out
}

// RSS renders articles as an RSS 2.0 document titled feedTitle.
func RSS(feedTitle string, articles []entity.Article) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0"><channel>`)
	fmt.Fprintf(&b, "<title>%s</title><link>https://news.example.com/</link><description>fixture feed</description>", html.EscapeString(feedTitle))
	for _, a := range articles {
		b.WriteString("<item>")
		fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(a.Title))
		fmt.Fprintf(&b, "<link>%s</link>", html.EscapeString(a.URL))
		fmt.Fprintf(&b, "<description>%s</description>", html.EscapeString(a.Summary))
		if a.Category != "" {
			fmt.Fprintf(&b, "<category>%s</category>", html.EscapeString(a.Category))
		}
		if a.PublishedAt != nil {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>", a.PublishedAt.UTC().Format(time.RFC1123Z))
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}
