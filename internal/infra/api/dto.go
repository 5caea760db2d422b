package api

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"newsclient/internal/domain/entity"
	"newsclient/internal/observability/metrics"
)

// newsResponse is the body of GET /news/.
// Pointer fields distinguish a missing key from a zero value.
type newsResponse struct {
	Page       *int          `json:"page"`
	TotalPages *int          `json:"total_pages"`
	Articles   *[]articleDTO `json:"articles"`
}

// articleDTO is an article as serialized by the API. News items carry the
// link in "url", bookmark items in "article_url".
type articleDTO struct {
	URL         string  `json:"url"`
	ArticleURL  string  `json:"article_url"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	ImageURL    *string `json:"image_url"`
	PublishedAt *string `json:"published_at"`
	Category    string  `json:"category"`
	Source      string  `json:"source"`
	Language    string  `json:"language"`
}

type bookmarksResponse struct {
	Bookmarks *[]articleDTO `json:"bookmarks"`
}

type countResponse struct {
	Count *int `json:"count"`
}

type statusResponse struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *entity.User `json:"user"`
}

type userResponse struct {
	Message string       `json:"message"`
	User    *entity.User `json:"user"`
}

// errorBody covers the message shapes the API uses for failures.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

func (b errorBody) text() string {
	msg, _ := lo.Coalesce(b.Message, b.Error, b.Detail)
	return msg
}

type removeBookmarkRequest struct {
	ArticleURL string `json:"article_url"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// publishedLayouts are the timestamp formats accepted for published_at.
var publishedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parsePublishedAt(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	slog.Warn("ignoring unparseable published_at", slog.String("value", *s))
	return nil
}

// toEntity converts the wire form. fallback is used when the item omits its language.
func (d articleDTO) toEntity(fallback entity.Language) entity.Article {
	lang := entity.Language(d.Language)
	if lang == "" {
		lang = fallback
	}
	image := d.ImageURL
	if image != nil && *image == "" {
		image = nil
	}
	url, _ := lo.Coalesce(d.ArticleURL, d.URL)
	return entity.Article{
		URL:         url,
		Title:       d.Title,
		Summary:     d.Summary,
		ImageURL:    image,
		PublishedAt: parsePublishedAt(d.PublishedAt),
		Category:    d.Category,
		Source:      d.Source,
		Language:    lang,
	}
}

// toArticles converts items, dropping entries without a URL and later
// duplicates of a URL already seen in the same batch.
func toArticles(items []articleDTO, fallback entity.Language, endpoint string) []entity.Article {
	all := lo.Map(items, func(d articleDTO, _ int) entity.Article { return d.toEntity(fallback) })

	withURL := lo.Filter(all, func(a entity.Article, _ int) bool { return a.URL != "" })
	if missing := len(all) - len(withURL); missing > 0 {
		slog.Warn("dropping articles without url",
			slog.String("endpoint", endpoint),
			slog.Int("count", missing))
	}

	unique := lo.UniqBy(withURL, func(a entity.Article) string { return a.URL })
	if dup := len(withURL) - len(unique); dup > 0 {
		slog.Warn("dropping duplicate articles within page",
			slog.String("endpoint", endpoint),
			slog.Int("count", dup))
		metrics.RecordDuplicatesDropped(dup)
	}
	return unique
}

var (
	errMissingPage     = errors.New("missing field: page")
	errMissingArticles = errors.New("missing field: articles")
	errInvalidPage     = errors.New("page must be a positive integer")
	errMissingList     = errors.New("missing field: bookmarks")
	errMissingCount    = errors.New("missing field: count")
	errNegativeCount   = errors.New("count must not be negative")
)

// toPage validates and converts a news response. A missing or non-positive
// total_pages is treated as a single page.
func (r newsResponse) toPage(lang entity.Language, endpoint string) (*entity.Page, error) {
	if r.Page == nil {
		return nil, errMissingPage
	}
	if *r.Page < 1 {
		return nil, errInvalidPage
	}
	if r.Articles == nil {
		return nil, errMissingArticles
	}
	total := 1
	if r.TotalPages != nil && *r.TotalPages > 0 {
		total = *r.TotalPages
	}
	return &entity.Page{
		PageNumber: *r.Page,
		TotalPages: total,
		Articles:   toArticles(*r.Articles, lang, endpoint),
	}, nil
}
