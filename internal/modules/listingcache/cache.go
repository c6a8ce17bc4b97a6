// Package listingcache caches product listing results keyed by a rounded
// coordinate pair. Entries expire after a fixed TTL and every mutation that
// changes listing visibility drops the whole cache.
package listingcache

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// DefaultTTL is how long a listing stays fresh.
const DefaultTTL = 5 * time.Minute

// Clock is the time source; tests substitute a manual one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL cache safe for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	clock   Clock
	ttl     time.Duration
	entries map[string]entry[V]
}

// New creates a cache. A nil clock uses the wall clock; a non-positive ttl
// uses DefaultTTL.
func New[V any](clock Clock, ttl time.Duration) *Cache[V] {
	if clock == nil {
		clock = SystemClock
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{clock: clock, ttl: ttl, entries: make(map[string]entry[V])}
}

// Get returns the fresh value stored under key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores v under key for one TTL.
func (c *Cache[V]) Put(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: v, expiresAt: c.clock.Now().Add(c.ttl)}
}

// InvalidateAll drops every entry.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Len is the number of stored entries, including expired ones not yet read.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// KeyFor rounds both coordinates to 2 decimal places (about 1.1 km).
func KeyFor(lat, lng float64) string {
	return fmt.Sprintf("%.2f,%.2f", round2(lat), round2(lng))
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // normalise -0
	}
	return r
}
