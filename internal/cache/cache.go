// Package cache keeps recently computed read views for the HTTP API
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a TTL cache that is flushed whenever stations or fares change.
//
// Every Flush bumps a version. A reader takes Version before loading from
// the store and stores its result with SetIfCurrent, so a view computed
// before a write can never be cached after that write's Flush.
type Cache struct {
	items *gocache.Cache

	mu      sync.Mutex
	version uint64
}

// New creates a cache whose entries expire after ttl. A ttl <= 0 disables caching.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{}
	}
	return &Cache{items: gocache.New(ttl, 2*ttl)}
}

// Key joins a prefix and its parameters, e.g. "fares:a:b"
func Key(prefix string, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, prefix)
	for _, p := range params {
		parts = append(parts, fmt.Sprintf("%v", p))
	}
	return strings.Join(parts, ":")
}

func (c *Cache) Get(key string) (any, bool) {
	if c.items == nil {
		return nil, false
	}
	return c.items.Get(key)
}

// Version returns the current flush generation
func (c *Cache) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// SetIfCurrent stores value only if no Flush happened since version was read.
// It reports whether the value was stored.
func (c *Cache) SetIfCurrent(key string, value any, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.items == nil || c.version != version {
		return false
	}
	c.items.SetDefault(key, value)
	return true
}

// Flush drops every entry and invalidates reads still in flight
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	if c.items != nil {
		c.items.Flush()
	}
}

// Len returns the number of unexpired entries
func (c *Cache) Len() int {
	if c.items == nil {
		return 0
	}
	return c.items.ItemCount()
}
