package cache

import (
	"sync"
	"time"
)

// entry holds a cached price with the time it was stored.
type entry struct {
	price    float64
	source   string
	storedAt time.Time
}

// Cache is an in-memory TTL memo of canonical URL → price. Staleness is
// checked lazily on read; there is no background eviction, the working set
// of queried URLs stays naturally small. Safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]entry
	ttl        time.Duration
	maxEntries int
}

// New creates a Cache with the given TTL and capacity.
func New(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		store:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get returns the cached price and source for a canonical URL if the entry
// is younger than the TTL. Stale entries count as a miss; they stay in the
// map until overwritten.
func (c *Cache) Get(url string) (price float64, source string, ok bool) {
	c.mu.RLock()
	e, found := c.store[url]
	c.mu.RUnlock()

	if !found || time.Since(e.storedAt) >= c.ttl {
		return 0, "", false
	}
	return e.price, e.source, true
}

// Put stores a freshly extracted price, overwriting any previous entry for
// the URL. Concurrent writers racing on the same key are harmless: both
// write a fresh price. If the cache is at capacity, a random entry is
// evicted to make room (map iteration is random in Go).
func (c *Cache) Put(url string, price float64, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[url]; !exists && c.maxEntries > 0 && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[url] = entry{price: price, source: source, storedAt: time.Now()}
}

// Len returns the number of entries currently stored, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
