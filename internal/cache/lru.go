package cache

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUCache implements an in-memory LRU cache.
type LRUCache struct {
	entries *lru.LRU[string, *Entry]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLRUCache creates a new LRU cache. A ttl of zero keeps entries until
// they are evicted.
func NewLRUCache(maxEntries int, ttl time.Duration) *LRUCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &LRUCache{
		entries: lru.NewLRU[string, *Entry](maxEntries, nil, ttl),
	}
}

func (c *LRUCache) Get(key string) (*Entry, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return entry, true
}

func (c *LRUCache) Set(key string, entry *Entry) {
	if entry == nil {
		return
	}
	c.entries.Add(key, entry)
}

func (c *LRUCache) Delete(key string) {
	c.entries.Remove(key)
}

func (c *LRUCache) Clear() {
	c.entries.Purge()
}

func (c *LRUCache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.entries.Len(),
	}
}

var _ Cache = (*LRUCache)(nil)
