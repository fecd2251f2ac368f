package api

import (
	"sync"
	"time"
)

// responseCache is a small TTL cache for aggregation responses. A zero TTL
// disables it.
type responseCache struct {
	mutex sync.RWMutex
	ttl   time.Duration
	items map[string]cacheItem
}

type cacheItem struct {
	data      interface{}
	expiresAt time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:   ttl,
		items: make(map[string]cacheItem),
	}
}

// Get retrieves an item from the cache
func (c *responseCache) Get(key string) (interface{}, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.items[key]
	if !exists || time.Now().After(item.expiresAt) {
		return nil, false
	}

	return item.data, true
}

// Set stores an item in the cache
func (c *responseCache) Set(key string, data interface{}) {
	if c.ttl <= 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Opportunistically drop expired entries so the map stays bounded.
	now := time.Now()
	for k, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, k)
		}
	}

	c.items[key] = cacheItem{
		data:      data,
		expiresAt: now.Add(c.ttl),
	}
}
