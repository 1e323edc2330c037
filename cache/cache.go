package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/visper-inc/cartoondl/models"
)

// entry holds a cached response with its creation timestamp.
type entry struct {
	response  models.DownloadResponse
	createdAt time.Time
}

// Cache is a simple in-memory TTL cache for download responses.
// It is safe for concurrent use. A nil *Cache is a valid, always-missing cache.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	ttl        time.Duration
	maxEntries int
	done       chan struct{}
	stopOnce   sync.Once
}

// New creates a Cache. It returns nil when ttl <= 0 (caching disabled).
// A background goroutine evicts expired entries every 5 minutes until Stop.
func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		return nil
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	c := &Cache{
		store:      make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		done:       make(chan struct{}),
	}

	go c.cleanupLoop(5 * time.Minute)
	return c
}

// Key generates a cache key from the target URL.
func Key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

// Get returns a copy of the cached response if it exists and is younger
// than the TTL.
func (c *Cache) Get(key string) (*models.DownloadResponse, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > c.ttl {
		return nil, false
	}

	resp := e.response
	return &resp, true
}

// Set stores a response. If the cache is at capacity, a random entry is
// evicted to make room.
func (c *Cache) Set(key string, resp *models.DownloadResponse) {
	if c == nil || resp == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		response:  *resp,
		createdAt: time.Now(),
	}
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stop terminates the background cleanup goroutine.
func (c *Cache) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *Cache) prune() {
	cutoff := time.Now().Add(-c.ttl)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.prune()
		}
	}
}
