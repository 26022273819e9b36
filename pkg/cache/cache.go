// Package cache provides a small LRU cache with per-entry expiry. The UI
// keeps rendered markdown in it so re-selecting a ticket does not run
// the renderer again.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultSize is the default maximum number of entries.
const DefaultSize = 100

// DefaultTTL is the default time-to-live for entries.
const DefaultTTL = 10 * time.Minute

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// Stats reports cache counters.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      int64
	Misses    int64
	Evictions int64 // TTL and LRU combined
	TTL       time.Duration
}

// Cache is an LRU cache keyed by string. It is safe for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = least recently used
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	hits, misses, evictions int64
}

// Option configures a Cache.
type Option func(*settings)

type settings struct {
	size int
	ttl  time.Duration
	now  func() time.Time
}

// WithSize sets the maximum number of entries.
func WithSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.size = n
		}
	}
}

// WithTTL sets how long an entry stays valid.
func WithTTL(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty cache.
func New[V any](opts ...Option) *Cache[V] {
	s := settings{size: DefaultSize, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[V]{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: s.size,
		ttl:     s.ttl,
		now:     s.now,
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}
	e := elem.Value.(*entry[V])
	if c.now().After(e.expiresAt) {
		c.remove(elem)
		c.evictions++
		c.misses++
		return zero, false
	}
	c.order.MoveToBack(elem)
	c.hits++
	return e.value, true
}

// Set stores value under key, evicting expired entries first and then
// the least recently used one when full.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = now.Add(c.ttl)
		c.order.MoveToBack(elem)
		return
	}

	c.makeRoom(now)
	c.entries[key] = c.order.PushBack(&entry[V]{key: key, value: value, expiresAt: now.Add(c.ttl)})
}

// Invalidate removes key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.remove(elem)
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a copy of the counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		TTL:       c.ttl,
	}
}

// makeRoom drops expired entries, then LRU entries until one more fits.
// Caller must hold c.mu.
func (c *Cache[V]) makeRoom(now time.Time) {
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if now.After(elem.Value.(*entry[V]).expiresAt) {
			c.remove(elem)
			c.evictions++
		}
		elem = next
	}
	for len(c.entries) >= c.maxSize {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.remove(oldest)
		c.evictions++
	}
}

// Caller must hold c.mu.
func (c *Cache[V]) remove(elem *list.Element) {
	delete(c.entries, elem.Value.(*entry[V]).key)
	c.order.Remove(elem)
}
