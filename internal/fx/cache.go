package fx

import (
	"context"
	"sync"
	"time"
)

// Cache stores the most recent provider table.
type Cache interface {
	Get(ctx context.Context) (Table, bool, error)
	Set(ctx context.Context, t Table, ttl time.Duration) error
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	table   Table
	expires time.Time
	now     func() time.Time
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (c *MemoryCache) Get(context.Context) (Table, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.table.Base == "" || !c.now().Before(c.expires) {
		return Table{}, false, nil
	}
	return c.table, true, nil
}

func (c *MemoryCache) Set(_ context.Context, t Table, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = t
	c.expires = c.now().Add(ttl)
	return nil
}
