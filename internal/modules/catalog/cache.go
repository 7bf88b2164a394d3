package catalog

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a filtered result set stays fresh.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	products []Product
	storedAt time.Time
}

// ResultCache memoizes filtered result sets keyed by the canonical request
// key. Expiry is checked lazily on read; nothing evicts in the background.
// Concurrent writers for the same key simply overwrite each other, which
// only duplicates normalization work.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration

	// Clock is injectable so tests can control time.
	Clock func() time.Time
}

func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		Clock:   time.Now,
	}
}

func (c *ResultCache) Get(key string) ([]Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.Clock().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.products, true
}

func (c *ResultCache) Put(key string, products []Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{products: products, storedAt: c.Clock()}
}

func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports the number of live and stale entries still held.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
