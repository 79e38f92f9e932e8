// Package cache keeps the most recent extraction result per site in memory
// so the API can answer repeat requests without another browser run.
package cache

import (
	"sync"
	"time"

	"github.com/menuhound/menuhound/models"
)

type entry struct {
	result    *models.SiteResult
	createdAt time.Time
}

// Cache is a TTL cache of per-site results. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

// New creates a Cache whose entries expire after ttl.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Get returns the cached result for a site if it is still fresh.
func (c *Cache) Get(site string) (*models.SiteResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[site]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > c.ttl {
		return nil, false
	}
	return e.result, true
}

// Set stores a site's result, evicting any expired entries while the lock
// is held so the map stays bounded by the number of live sites.
func (c *Cache) Set(site string, res *models.SiteResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.ttl)
	for k, e := range c.entries {
		if e.createdAt.Before(cutoff) {
			delete(c.entries, k)
		}
	}

	c.entries[site] = entry{result: res, createdAt: time.Now()}
}
