package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsclient/internal/domain/entity"
	"newsclient/internal/infra/cache"
	"newsclient/internal/usecase/feed"
	"newsclient/tests/fixtures"
)

// compile-time check
var _ feed.PageCache = (*cache.MemoryPageCache)(nil)

func TestMemoryPageCache_Miss(t *testing.T) {
	c := cache.NewMemoryPageCache()

	_, ok, err := c.Get(context.Background(), "news:en:30:1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryPageCache_SetGet(t *testing.T) {
	c := cache.NewMemoryPageCache()
	ctx := context.Background()
	entry := feed.CachedPage{
		Page:      &entity.Page{PageNumber: 1, TotalPages: 3, Articles: fixtures.Articles(entity.LanguageEnglish, 2)},
		FetchedAt: fixtures.BaseTime,
	}

	require.NoError(t, c.Set(ctx, "news:en:30:1", entry))

	got, ok, err := c.Get(ctx, "news:en:30:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryPageCache_Overwrite(t *testing.T) {
	c := cache.NewMemoryPageCache()
	ctx := context.Background()

	first := feed.CachedPage{Page: &entity.Page{PageNumber: 1, TotalPages: 1}, FetchedAt: fixtures.BaseTime}
	second := feed.CachedPage{Page: &entity.Page{PageNumber: 1, TotalPages: 2}, FetchedAt: fixtures.BaseTime.Add(10 * time.Minute)}
	require.NoError(t, c.Set(ctx, "k", first))
	require.NoError(t, c.Set(ctx, "k", second))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Page.TotalPages)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryPageCache_Concurrent(t *testing.T) {
	c := cache.NewMemoryPageCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := entity.NewsRequest{Page: i%4 + 1, Language: entity.LanguageEnglish, PerPage: 30}.CacheKey()
			_ = c.Set(ctx, key, feed.CachedPage{Page: &entity.Page{PageNumber: i%4 + 1, TotalPages: 4}})
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, c.Len())
}
