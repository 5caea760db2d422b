package testserver

import (
	"fmt"
	"io"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"

	"newsclient/internal/domain/entity"
)

// SeedFromFeed parses an RSS or Atom document and appends its items to the
// news list for lang. Items without a link are skipped. It returns the number
// of articles added.
func (s *Server) SeedFromFeed(r io.Reader, lang entity.Language) (int, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return 0, fmt.Errorf("parse feed: %w", err)
	}

	items := lo.Filter(feed.Items, func(item *gofeed.Item, _ int) bool { return item.Link != "" })
	articles := lo.Map(items, func(item *gofeed.Item, _ int) entity.Article {
		return feedItemToArticle(item, feed.Title, lang)
	})

	s.SeedArticles(lang, articles...)
	return len(articles), nil
}

func feedItemToArticle(item *gofeed.Item, feedTitle string, lang entity.Language) entity.Article {
	a := entity.Article{
		URL:      item.Link,
		Title:    item.Title,
		Summary:  lo.Ternary(item.Description != "", item.Description, item.Content),
		Source:   feedTitle,
		Language: lang,
	}
	if len(item.Categories) > 0 {
		a.Category = item.Categories[0]
	}
	if item.Image != nil && item.Image.URL != "" {
		a.ImageURL = lo.ToPtr(item.Image.URL)
	}
	switch {
	case item.PublishedParsed != nil:
		a.PublishedAt = lo.ToPtr(item.PublishedParsed.UTC())
	case item.UpdatedParsed != nil:
		a.PublishedAt = lo.ToPtr(item.UpdatedParsed.UTC())
	}
	return a
}

// articleJSON is the news item wire form; timestamps are RFC 3339.
type articleJSON struct {
	URL         string  `json:"url,omitempty"`
	ArticleURL  string  `json:"article_url,omitempty"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	ImageURL    *string `json:"image_url"`
	PublishedAt *string `json:"published_at"`
	Category    string  `json:"category"`
	Source      string  `json:"source"`
	Language    string  `json:"language"`
}

func newsItem(a entity.Article) articleJSON {
	return articleJSON{
		URL:         a.URL,
		Title:       a.Title,
		Summary:     a.Summary,
		ImageURL:    a.ImageURL,
		PublishedAt: formatTime(a.PublishedAt),
		Category:    a.Category,
		Source:      a.Source,
		Language:    string(a.Language),
	}
}

func bookmarkItem(rec entity.BookmarkRecord) articleJSON {
	return articleJSON{
		ArticleURL:  rec.ArticleURL,
		Title:       rec.Title,
		Summary:     rec.Summary,
		ImageURL:    lo.Ternary(rec.ImageURL == "", nil, lo.ToPtr(rec.ImageURL)),
		PublishedAt: formatTime(&rec.PublishedAt),
		Category:    rec.Category,
		Source:      rec.Source,
		Language:    string(rec.Language),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	return lo.ToPtr(t.UTC().Format(time.RFC3339))
}
