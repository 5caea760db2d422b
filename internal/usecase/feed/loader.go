package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"newsclient/internal/domain/entity"
	"newsclient/internal/observability/metrics"
	"newsclient/internal/observability/tracing"
	"newsclient/internal/resilience/retry"
)

// NewsAPI fetches news pages from the remote API.
type NewsAPI interface {
	FetchNews(ctx context.Context, req entity.NewsRequest) (*entity.Page, error)
}

// CachedPage is a page together with the time it was received.
type CachedPage struct {
	Page      *entity.Page
	FetchedAt time.Time
}

// PageCache stores fetched pages by entity.NewsRequest.CacheKey.
// Implementations never decide freshness; the loader does.
type PageCache interface {
	Get(ctx context.Context, key string) (CachedPage, bool, error)
	Set(ctx context.Context, key string, entry CachedPage) error
}

// LoaderConfig tunes the page loader.
type LoaderConfig struct {
	// StaleTime is how long a cached page is served without refetching. Default: 5m
	StaleTime time.Duration
	// Retry controls automatic retries of transient failures.
	// Default: retry.FeedFetchConfig (one retry after one second).
	Retry retry.Config
	// Now is the clock used for freshness decisions. Default: time.Now
	Now func() time.Time
}

// DefaultLoaderConfig returns the defaults described on LoaderConfig.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		StaleTime: 5 * time.Minute,
		Retry:     retry.FeedFetchConfig(),
		Now:       time.Now,
	}
}

// PageLoader is the shared query layer between controllers and the API.
// A page is served from cache while fresh; concurrent requests for the same
// page share one network call; transient failures are retried before they
// are surfaced. Stale entries are kept until the next load overwrites them.
type PageLoader struct {
	api    NewsAPI
	cache  PageCache
	cfg    LoaderConfig
	group  singleflight.Group
	logger *slog.Logger
}

// NewPageLoader creates a loader. Zero fields of cfg take their defaults.
func NewPageLoader(api NewsAPI, cache PageCache, cfg LoaderConfig) *PageLoader {
	def := DefaultLoaderConfig()
	if cfg.StaleTime <= 0 {
		cfg.StaleTime = def.StaleTime
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = def.Retry
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	return &PageLoader{
		api:    api,
		cache:  cache,
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// Load returns the page for req, from cache when fresh.
func (l *PageLoader) Load(ctx context.Context, req entity.NewsRequest) (page *entity.Page, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "feed.load_page",
		attribute.Int("page", req.Page),
		attribute.String("language", string(req.Language)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	start := l.cfg.Now()
	lang := string(req.Language)
	key := req.CacheKey()

	result := metrics.CacheMiss
	entry, ok, cerr := l.cache.Get(ctx, key)
	switch {
	case cerr != nil:
		l.logger.Warn("page cache read failed, fetching from API",
			slog.String("key", key),
			slog.Any("error", cerr))
	case ok && l.isFresh(entry):
		metrics.RecordPageLoad(lang, metrics.CacheHit, 0)
		span.SetAttributes(attribute.String("cache", metrics.CacheHit))
		return entry.Page, nil
	case ok:
		result = metrics.CacheStale
	}
	span.SetAttributes(attribute.String("cache", result))

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		return l.fetch(ctx, req, key)
	})
	if err != nil {
		metrics.RecordPageLoad(lang, metrics.LoadError, l.cfg.Now().Sub(start))
		return nil, err
	}

	metrics.RecordPageLoad(lang, result, l.cfg.Now().Sub(start))
	return v.(*entity.Page), nil
}

// fetch calls the API with retry and stores the result.
func (l *PageLoader) fetch(ctx context.Context, req entity.NewsRequest, key string) (*entity.Page, error) {
	page, err := retry.Do(ctx, l.cfg.Retry, func(ctx context.Context) (*entity.Page, error) {
		return l.api.FetchNews(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("load page %d (%s): %w", req.Page, req.Language, err)
	}

	if err := l.cache.Set(ctx, key, CachedPage{Page: page, FetchedAt: l.cfg.Now()}); err != nil {
		l.logger.Warn("page cache write failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
	return page, nil
}

func (l *PageLoader) isFresh(entry CachedPage) bool {
	if entry.Page == nil {
		return false
	}
	return l.cfg.Now().Sub(entry.FetchedAt) < l.cfg.StaleTime
}
