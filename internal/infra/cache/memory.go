// Package cache provides page cache backends for the feed loader:
// a process-local map and a Redis-backed cache shared between client processes.
package cache

import (
	"context"
	"sync"

	"newsclient/internal/usecase/feed"
)

// MemoryPageCache is a process-local page cache. Entries are never evicted;
// the loader overwrites them when they go stale.
type MemoryPageCache struct {
	mu      sync.RWMutex
	entries map[string]feed.CachedPage
}

// NewMemoryPageCache creates an empty cache.
func NewMemoryPageCache() *MemoryPageCache {
	return &MemoryPageCache{entries: make(map[string]feed.CachedPage)}
}

// Get returns the entry stored under key.
func (c *MemoryPageCache) Get(_ context.Context, key string) (feed.CachedPage, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok, nil
}

// Set stores entry under key, replacing any previous entry.
func (c *MemoryPageCache) Set(_ context.Context, key string, entry feed.CachedPage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

// Len returns the number of cached pages.
func (c *MemoryPageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
