package bookmark

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"newsclient/internal/domain/entity"
	"newsclient/internal/observability/metrics"
	"newsclient/internal/observability/tracing"
)

// API is the subset of the remote API used for bookmarks.
type API interface {
	AddBookmark(ctx context.Context, rec entity.BookmarkRecord) error
	RemoveBookmark(ctx context.Context, articleURL string) error
	ListBookmarks(ctx context.Context) ([]entity.Article, error)
	BookmarkCount(ctx context.Context) (int, error)
}

// Session is the shared authenticated-session state.
type Session interface {
	IsAuthenticated() bool
	Refresh(ctx context.Context)
}

// Overview is the bookmarks view: the full list and the server's count.
type Overview struct {
	Articles []entity.Article
	Count    int
}

// Sync toggles bookmarks on the server and mirrors the result locally.
// Toggles for different articles may run concurrently. Two toggles of the same
// article from stale snapshots are not serialised; the server decides.
type Sync struct {
	api     API
	session Session
	now     func() time.Time

	mu  sync.RWMutex
	set entity.BookmarkSet
}

// NewSync creates a Sync bound to session.
func NewSync(api API, session Session) *Sync {
	return &Sync{api: api, session: session, now: time.Now}
}

// WithClock overrides the time used for articles without a publication date.
func (s *Sync) WithClock(now func() time.Time) *Sync {
	s.now = now
	return s
}

// Toggle removes the bookmark when isBookmarked, otherwise adds it.
// It fails with entity.ErrAuthRequired before any request when nobody is logged in.
// On failure nothing local changes and a *BookmarkError is returned.
func (s *Sync) Toggle(ctx context.Context, article entity.Article, isBookmarked bool) (err error) {
	if !s.session.IsAuthenticated() {
		return entity.ErrAuthRequired
	}

	action := lo.Ternary(isBookmarked, ActionRemove, ActionAdd)
	if err := validateToggle(article.URL, isBookmarked); err != nil {
		return &BookmarkError{Action: action, Message: entity.MessageOrFallback(err, ""), Err: err}
	}
	ctx, span := tracing.StartSpan(ctx, "bookmark.toggle")
	defer func() { tracing.EndSpan(span, err) }()

	if isBookmarked {
		err = s.api.RemoveBookmark(ctx, article.URL)
	} else {
		err = s.api.AddBookmark(ctx, entity.NewBookmarkRecord(article, s.now()))
	}
	metrics.RecordBookmarkToggle(action, err == nil)

	if err != nil {
		slog.Warn("bookmark toggle failed",
			slog.String("action", action),
			slog.String("article_url", article.URL),
			slog.Any("error", err))
		fallback := lo.Ternary(isBookmarked, msgRemoveFailed, msgAddFailed)
		return &BookmarkError{Action: action, Message: entity.MessageOrFallback(err, fallback), Err: err}
	}

	s.mu.Lock()
	if isBookmarked {
		s.set = entity.NewBookmarkSet(lo.Reject(s.set.Articles(), func(a entity.Article, _ int) bool {
			return a.URL == article.URL
		}))
	} else {
		s.set = entity.NewBookmarkSet(append(s.set.Articles(), article))
	}
	s.mu.Unlock()

	s.session.Refresh(ctx)
	return nil
}

// validateToggle checks the URL before any request. Removal sends the stored
// URL back as it is, so only an empty one is rejected.
func validateToggle(url string, isBookmarked bool) error {
	if !isBookmarked {
		return entity.ValidateArticleURL(url)
	}
	if strings.TrimSpace(url) == "" {
		return &entity.ValidationError{Field: "url", Message: "URL is required"}
	}
	return nil
}

// ListAll fetches every bookmark and replaces the local set with it.
func (s *Sync) ListAll(ctx context.Context) ([]entity.Article, error) {
	if !s.session.IsAuthenticated() {
		return nil, entity.ErrAuthRequired
	}

	articles, err := s.api.ListBookmarks(ctx)
	if err != nil {
		return nil, &BookmarkError{Action: ActionList, Message: entity.MessageOrFallback(err, msgListFailed), Err: err}
	}

	s.mu.Lock()
	s.set = entity.NewBookmarkSet(articles)
	s.mu.Unlock()
	return articles, nil
}

// Overview loads the bookmark list and count in parallel.
func (s *Sync) Overview(ctx context.Context) (Overview, error) {
	if !s.session.IsAuthenticated() {
		return Overview{}, entity.ErrAuthRequired
	}

	var ov Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		articles, err := s.ListAll(gctx)
		ov.Articles = articles
		return err
	})
	g.Go(func() error {
		count, err := s.api.BookmarkCount(gctx)
		if err != nil {
			return &BookmarkError{Action: ActionList, Message: entity.MessageOrFallback(err, msgListFailed), Err: err}
		}
		ov.Count = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return ov, nil
}

// Set returns the local bookmark set. It is empty when nobody is logged in.
func (s *Sync) Set() entity.BookmarkSet {
	if !s.session.IsAuthenticated() {
		return entity.BookmarkSet{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// IsBookmarked reports whether url is in the local set.
func (s *Sync) IsBookmarked(url string) bool {
	return s.Set().Contains(url)
}

// Clear drops the local set, e.g. after logout.
func (s *Sync) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = entity.BookmarkSet{}
}

// IsAuthRequired reports whether err means the user must log in first.
func IsAuthRequired(err error) bool {
	return errors.Is(err, entity.ErrAuthRequired)
}
