package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"newsclient/internal/domain/entity"
)

// Loader obtains one page of news. *PageLoader implements it.
type Loader interface {
	Load(ctx context.Context, req entity.NewsRequest) (*entity.Page, error)
}

// State is a snapshot of what a feed view renders.
type State struct {
	Language    entity.Language
	Articles    []entity.Article // page order, then in-page order
	CurrentPage int
	TotalPages  int
	HasMore     bool
	// Loaded is true once a first page for Language has arrived.
	Loaded bool
	// Loading is true while the first page (or a reload) is in flight.
	Loading bool
	// LoadingMore is true while a following page is in flight.
	LoadingMore bool
	// Err is the last load failure. The list is left as it was; the view offers a retry.
	Err error
}

// Empty reports whether the feed loaded and has no articles at all.
func (s State) Empty() bool {
	return s.Loaded && len(s.Articles) == 0
}

// Item is an article with its render key.
type Item struct {
	Key     string
	Article entity.Article
}

// Items returns the articles with keys that stay unique even when the same
// URL appears on two pages.
func (s State) Items() []Item {
	items := make([]Item, len(s.Articles))
	for i, a := range s.Articles {
		items[i] = Item{Key: RenderKey(a.URL, i), Article: a}
	}
	return items
}

// RenderKey builds the display key of the article at position.
func RenderKey(url string, position int) string {
	return url + "#" + strconv.Itoa(position)
}

// Controller accumulates news pages for one feed view.
//
// At most one fetch is in flight; calls made while one is pending are ignored,
// except a language change, which resets the state and supersedes the pending
// fetch. Results of fetches started before a reset or Discard are dropped.
type Controller struct {
	loader  Loader
	perPage int
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	inFlight   bool
	generation uint64
	retryMore  bool
}

// NewController creates a controller. perPage <= 0 means entity.DefaultPerPage.
func NewController(loader Loader, perPage int) *Controller {
	if perPage <= 0 {
		perPage = entity.DefaultPerPage
	}
	return &Controller{
		loader:  loader,
		perPage: perPage,
		logger:  slog.Default(),
	}
}

// Load requests the first page for lang.
//
// A language different from the current one resets the accumulated articles
// immediately. Reloading the same language keeps the current list until the
// new first page arrives, and keeps it on failure.
func (c *Controller) Load(ctx context.Context, lang entity.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
	}

	c.mu.Lock()
	if lang != c.state.Language {
		c.generation++
		c.state = State{Language: lang}
		c.inFlight = false
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	c.state.Loading = true
	gen := c.generation
	c.mu.Unlock()

	page, err := c.loader.Load(ctx, entity.NewsRequest{Page: 1, Language: lang, PerPage: c.perPage})

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("dropping superseded feed result", slog.String("language", string(lang)))
		return nil
	}
	c.inFlight = false
	c.state.Loading = false

	if err != nil {
		c.state.Err = err
		c.retryMore = false
		return err
	}

	c.state = State{
		Language:    lang,
		Articles:    append([]entity.Article(nil), page.Articles...),
		CurrentPage: page.PageNumber,
		TotalPages:  page.TotalPages,
		HasMore:     page.HasNext(),
		Loaded:      true,
	}
	return nil
}

// LoadMore requests the page after CurrentPage and appends it.
// It is a no-op before the first load, when HasMore is false, or while a fetch is in flight.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.Loaded || !c.state.HasMore || c.inFlight {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	c.state.LoadingMore = true
	gen := c.generation
	lang := c.state.Language
	next := c.state.CurrentPage + 1
	c.mu.Unlock()

	page, err := c.loader.Load(ctx, entity.NewsRequest{Page: next, Language: lang, PerPage: c.perPage})

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("dropping superseded feed page", slog.Int("page", next))
		return nil
	}
	c.inFlight = false
	c.state.LoadingMore = false

	if err != nil {
		c.state.Err = err
		c.retryMore = true
		return err
	}

	c.state.Articles = append(c.state.Articles, page.Articles...)
	c.state.CurrentPage = next
	c.state.TotalPages = page.TotalPages
	c.state.HasMore = c.state.CurrentPage < c.state.TotalPages
	c.state.Err = nil
	return nil
}

// Retry repeats the operation that last failed: LoadMore after a failed
// following page, otherwise Load of the current language.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	more := c.retryMore && c.state.Loaded
	lang := c.state.Language
	c.mu.Unlock()

	if more {
		return c.LoadMore(ctx)
	}
	if lang == "" {
		return nil
	}
	return c.Load(ctx, lang)
}

// Discard drops all state, as when the feed view goes away.
// A fetch still in flight completes but its result is ignored.
func (c *Controller) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = State{}
	c.inFlight = false
	c.retryMore = false
}

// State returns a snapshot of the feed state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Articles = append([]entity.Article(nil), c.state.Articles...)
	return s
}

// Items returns the current articles with their render keys.
func (c *Controller) Items() []Item {
	return c.State().Items()
}
