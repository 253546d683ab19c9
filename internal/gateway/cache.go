package gateway

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Clock supplies the current time; injectable for cache tests.
type Clock func() time.Time

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// Cache is a bounded read-through cache keyed by logical request
// signature. Entries carry an absolute expiry and are evicted lazily
// on lookup, never in the background.
type Cache struct {
	store *lru.Cache[string, cacheEntry]
	ttl   time.Duration
	now   Clock
}

func NewCache(size int, ttl time.Duration, now Clock) (*Cache, error) {
	if now == nil {
		now = time.Now
	}
	store, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{store: store, ttl: ttl, now: now}, nil
}

func (c *Cache) Get(key string) (interface{}, bool) {
	entry, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.store.Remove(key)
		return nil, false
	}
	return entry.data, true
}

func (c *Cache) Put(key string, data interface{}) {
	c.store.Add(key, cacheEntry{data: data, expiresAt: c.now().Add(c.ttl)})
}
