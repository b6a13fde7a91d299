package token

import (
	"sync"
	"time"
)

// Info is the metadata the external token-info service knows about a token.
type Info struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Cache stores lookup results keyed by Key(chain, address). A present nil
// value is a negative entry: the service was asked and had nothing, so don't
// ask again. Injected rather than package-global so hosts and tests can
// substitute their own.
type Cache interface {
	Get(key string) (*Info, bool)
	Set(key string, info *Info)
	Prune(maxAge time.Duration) int
	Len() int
}

type cacheEntry struct {
	info     *Info
	storedAt time.Time
}

// MemoryCache retains entries for the process lifetime unless pruned.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry)}
}

func (c *MemoryCache) Get(key string) (*Info, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.info, ok
}

func (c *MemoryCache) Set(key string, info *Info) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{info: info, storedAt: time.Now().UTC()}
}

// Prune drops entries older than maxAge and reports how many were removed.
// maxAge <= 0 means unbounded retention and prunes nothing.
func (c *MemoryCache) Prune(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().Add(-maxAge)
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, e := range c.entries {
		if e.storedAt.Before(cutoff) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
