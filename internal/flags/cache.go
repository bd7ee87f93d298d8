package flags

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value    string
	cachedAt time.Time
}

// Cache is a time-boxed store of resolved flag values plus the last
// successful refresh timestamp. Entries are replaced on write, validity-
// checked on read, and never proactively swept.
type Cache struct {
	mu           sync.RWMutex
	entries      map[string]cacheEntry
	lastRefresh  time.Time
	now          func() time.Time
	refreshEvery time.Duration
}

func NewCache() *Cache {
	return &Cache{
		entries:      make(map[string]cacheEntry),
		now:          time.Now,
		refreshEvery: refreshInterval,
	}
}

// Get returns the cached raw value for key if one exists and is still
// inside the TTL window.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.cachedAt) >= valueTTL {
		return "", false
	}
	return e.value, true
}

// Put stores value for key, restarting its TTL window.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, cachedAt: c.now()}
}

// Clear drops every cached value. The refresh bookkeeping is untouched.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// ShouldRefresh reports whether the last successful refresh is older than
// the refresh interval.
func (c *Cache) ShouldRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now().Sub(c.lastRefresh) > c.refreshEvery
}

// MarkRefreshed records a successful document refresh.
func (c *Cache) MarkRefreshed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRefresh = c.now()
}

// Len returns the number of cached entries, valid or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot copies the current entries for diagnostics.
func (c *Cache) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.entries))
	for k, e := range c.entries {
		out[k] = e.value
	}
	return out
}
