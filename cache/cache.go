// Package cache keeps recent single-brand scan results so repeated API
// requests do not refetch the same storefront.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/Farouk858/product-radar/models"
)

// entry holds a cached scan with its creation timestamp.
type entry struct {
	scan      models.ScanResponse
	createdAt time.Time
}

// Cache is a simple in-memory cache for scan responses.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// New creates a Cache holding at most maxEntries scans for at most ttl.
// A background goroutine evicts expired entries every ttl/2.
func New(maxEntries int, ttl time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: max(maxEntries, 1),
		ttl:        ttl,
		now:        time.Now,
	}

	if ttl > 0 {
		go c.cleanupLoop(ttl / 2)
	}
	return c
}

// Key derives a cache key from the brand URL and its alternate paths.
// Brand names do not take part: two names for one storefront share scans.
func Key(brand models.BrandConfig) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimRight(brand.URL, "/"))))
	for _, alt := range brand.Alts {
		h.Write([]byte("|"))
		h.Write([]byte(alt.Path))
		h.Write([]byte("#"))
		h.Write([]byte(alt.EffectiveHint()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached scan younger than both maxAge and the cache TTL.
// If maxAge <= 0, no lookup is performed.
func (c *Cache) Get(key string, maxAge time.Duration) (models.ScanResponse, bool) {
	if c == nil || maxAge <= 0 {
		return models.ScanResponse{}, false
	}
	if c.ttl > 0 && maxAge > c.ttl {
		maxAge = c.ttl
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.createdAt) > maxAge {
		return models.ScanResponse{}, false
	}
	return e.scan, true
}

// Set stores a scan. If the cache is at capacity the oldest entry is
// evicted to make room.
func (c *Cache) Set(key string, scan models.ScanResponse) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.store {
			if oldestKey == "" || e.createdAt.Before(oldest) {
				oldestKey, oldest = k, e.createdAt
			}
		}
		delete(c.store, oldestKey)
	}

	c.store[key] = &entry{scan: scan, createdAt: c.now()}
}

// Len returns the number of stored scans, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *Cache) evictExpired() {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}

// cleanupLoop evicts expired entries every interval.
func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		c.evictExpired()
	}
}
