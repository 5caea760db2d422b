package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"newsclient/internal/domain/entity"
	"newsclient/internal/usecase/feed"
)

// keyPrefix namespaces the client's keys in a shared Redis database.
const keyPrefix = "newsclient:"

// RedisPageCache stores pages in Redis so that several client processes share
// fetched pages. Freshness is still decided by the loader from FetchedAt;
// the Redis TTL only bounds how long abandoned entries occupy memory.
type RedisPageCache struct {
	rdb       *redis.Client
	prefix    string
	retention time.Duration
}

// redisEntry is the stored JSON document.
type redisEntry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Page      redisPage `json:"page"`
}

type redisPage struct {
	PageNumber int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Articles   []redisArticle `json:"articles"`
}

type redisArticle struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	ImageURL    *string    `json:"image_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Category    string     `json:"category"`
	Source      string     `json:"source"`
	Language    string     `json:"language"`
}

// NewRedisClient opens a client and verifies connectivity.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisPageCache wraps rdb. Keys are scoped to apiBaseURL so clients of
// different servers sharing one database never read each other's pages.
// retention <= 0 means one hour.
func NewRedisPageCache(rdb *redis.Client, apiBaseURL string, retention time.Duration) *RedisPageCache {
	if retention <= 0 {
		retention = time.Hour
	}
	return &RedisPageCache{rdb: rdb, prefix: namespace(apiBaseURL), retention: retention}
}

// namespace builds the key prefix for apiBaseURL from its host and path.
func namespace(apiBaseURL string) string {
	scope := strings.TrimSpace(apiBaseURL)
	if u, err := url.Parse(scope); err == nil && u.Host != "" {
		scope = strings.ToLower(u.Host) + u.Path
	}
	scope = strings.TrimRight(scope, "/")
	if scope == "" {
		return keyPrefix
	}
	return keyPrefix + scope + ":"
}

// Get returns the entry stored under key. A missing key is not an error.
func (c *RedisPageCache) Get(ctx context.Context, key string) (feed.CachedPage, bool, error) {
	data, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return feed.CachedPage{}, false, nil
	}
	if err != nil {
		return feed.CachedPage{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var e redisEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return feed.CachedPage{}, false, fmt.Errorf("decode cached page %s: %w", key, err)
	}
	return e.toCachedPage(), true, nil
}

// Set stores entry under key with the retention TTL.
func (c *RedisPageCache) Set(ctx context.Context, key string, entry feed.CachedPage) error {
	if entry.Page == nil {
		return errors.New("cannot cache a nil page")
	}
	data, err := json.Marshal(newRedisEntry(entry))
	if err != nil {
		return fmt.Errorf("encode page %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, c.prefix+key, data, c.retention).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func newRedisEntry(entry feed.CachedPage) redisEntry {
	articles := make([]redisArticle, len(entry.Page.Articles))
	for i, a := range entry.Page.Articles {
		articles[i] = redisArticle{
			URL:         a.URL,
			Title:       a.Title,
			Summary:     a.Summary,
			ImageURL:    a.ImageURL,
			PublishedAt: a.PublishedAt,
			Category:    a.Category,
			Source:      a.Source,
			Language:    string(a.Language),
		}
	}
	return redisEntry{
		FetchedAt: entry.FetchedAt,
		Page: redisPage{
			PageNumber: entry.Page.PageNumber,
			TotalPages: entry.Page.TotalPages,
			Articles:   articles,
		},
	}
}

func (e redisEntry) toCachedPage() feed.CachedPage {
	articles := make([]entity.Article, len(e.Page.Articles))
	for i, a := range e.Page.Articles {
		articles[i] = entity.Article{
			URL:         a.URL,
			Title:       a.Title,
			Summary:     a.Summary,
			ImageURL:    a.ImageURL,
			PublishedAt: a.PublishedAt,
			Category:    a.Category,
			Source:      a.Source,
			Language:    entity.Language(a.Language),
		}
	}
	return feed.CachedPage{
		FetchedAt: e.FetchedAt,
		Page: &entity.Page{
			PageNumber: e.Page.PageNumber,
			TotalPages: e.Page.TotalPages,
			Articles:   articles,
		},
	}
}
