package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsclient/internal/domain/entity"
	"newsclient/internal/infra/cache"
	"newsclient/internal/usecase/feed"
	"newsclient/tests/fixtures"
)

var _ feed.PageCache = (*cache.RedisPageCache)(nil)

// newTestRedisClient connects to NEWSCLIENT_TEST_REDIS_ADDR or skips.
func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("NEWSCLIENT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("NEWSCLIENT_TEST_REDIS_ADDR not set")
	}
	rdb, err := cache.NewRedisClient(context.Background(), addr, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func newTestRedisCache(t *testing.T) *cache.RedisPageCache {
	t.Helper()
	return cache.NewRedisPageCache(newTestRedisClient(t), "http://localhost:8000/api", time.Minute)
}

func TestRedisPageCache_RoundTrip(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	articles := fixtures.Articles(entity.LanguageNepali, 3)
	articles[1] = fixtures.NewTestArticle(fixtures.WithURL("https://news.example.com/np/bare"), fixtures.Bare())
	entry := feed.CachedPage{
		Page:      &entity.Page{PageNumber: 2, TotalPages: 5, Articles: articles},
		FetchedAt: fixtures.BaseTime,
	}

	require.NoError(t, c.Set(ctx, key, entry))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, entry.FetchedAt.Equal(got.FetchedAt))
	assert.Equal(t, 2, got.Page.PageNumber)
	assert.Equal(t, 5, got.Page.TotalPages)
	require.Len(t, got.Page.Articles, 3)
	assert.Equal(t, articles[0].URL, got.Page.Articles[0].URL)
	assert.Nil(t, got.Page.Articles[1].ImageURL)
	assert.Nil(t, got.Page.Articles[1].PublishedAt)
	assert.Equal(t, entity.LanguageNepali, got.Page.Articles[2].Language)
}

func TestRedisPageCache_ScopedByAPI(t *testing.T) {
	rdb := newTestRedisClient(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	staging := cache.NewRedisPageCache(rdb, "https://staging.example.com/api", time.Minute)
	prod := cache.NewRedisPageCache(rdb, "https://news.example.com/api", time.Minute)

	entry := feed.CachedPage{
		Page:      &entity.Page{PageNumber: 1, TotalPages: 1, Articles: fixtures.Articles(entity.LanguageEnglish, 1)},
		FetchedAt: fixtures.BaseTime,
	}
	require.NoError(t, staging.Set(ctx, key, entry))

	_, ok, err := prod.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = staging.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisPageCache_Miss(t *testing.T) {
	c := newTestRedisCache(t)

	_, ok, err := c.Get(context.Background(), "test:"+uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPageCache_NilPage(t *testing.T) {
	c := newTestRedisCache(t)

	err := c.Set(context.Background(), "test:"+uuid.NewString(), feed.CachedPage{})
	assert.Error(t, err)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := cache.NewRedisClient(ctx, "127.0.0.1:1", 0)
	assert.Error(t, err)
}
