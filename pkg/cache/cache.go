// Package cache implements the page micro-cache: a small LRU of fully
// rendered documents keyed by canonical path, used to absorb bursts on
// anonymous pages. Entries live for seconds, not minutes; pages with a
// session or a redirect are never stored.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config controls cache behavior.
type Config struct {
	// TTL is how long a cached document stays valid.
	// Default: 5 seconds.
	TTL time.Duration

	// MaxEntries caps the cache with LRU eviction.
	// Default: 256.
	MaxEntries int

	// MaxBytes caps total cached body bytes. Oldest entries are
	// evicted past the limit. Default: 32 MiB.
	MaxBytes int64
}

// DefaultConfig returns the default micro-cache settings.
func DefaultConfig() Config {
	return Config{
		TTL:        5 * time.Second,
		MaxEntries: 256,
		MaxBytes:   32 << 20,
	}
}

// Entry is one cached response.
type Entry struct {
	Body        []byte
	Status      int
	ContentType string
	CreatedAt   time.Time
	expiresAt   time.Time
}

// Expired reports whether the entry's TTL has elapsed.
func (e *Entry) Expired() bool {
	return time.Now().After(e.expiresAt)
}

// Age returns how long ago the entry was rendered.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// PageCache is an LRU+TTL cache of rendered documents. Safe for
// concurrent use.
type PageCache struct {
	mu      sync.Mutex
	config  Config
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	bytes   int64

	hits   uint64
	misses uint64
}

type item struct {
	key   string
	entry *Entry
}

// New creates a page cache. Zero config fields fall back to defaults.
func New(config Config) *PageCache {
	def := DefaultConfig()
	if config.TTL <= 0 {
		config.TTL = def.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = def.MaxEntries
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = def.MaxBytes
	}
	return &PageCache{
		config:  config,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached entry for key, or nil when absent or expired.
func (c *PageCache) Get(key string) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil
	}
	it := elem.Value.(*item)
	if it.entry.Expired() {
		c.removeLocked(elem)
		c.misses++
		return nil
	}
	c.order.MoveToFront(elem)
	c.hits++
	return it.entry
}

// Set stores a rendered document under key, evicting LRU entries past
// the entry and byte limits.
func (c *PageCache) Set(key string, body []byte, status int, contentType string) {
	if int64(len(body)) > c.config.MaxBytes {
		return
	}

	entry := &Entry{
		Body:        body,
		Status:      status,
		ContentType: contentType,
		CreatedAt:   time.Now(),
		expiresAt:   time.Now().Add(c.config.TTL),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}

	elem := c.order.PushFront(&item{key: key, entry: entry})
	c.entries[key] = elem
	c.bytes += int64(len(body))

	for c.order.Len() > c.config.MaxEntries || c.bytes > c.config.MaxBytes {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
	}
}

// Invalidate removes a single key.
func (c *PageCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
}

// Purge empties the cache.
func (c *PageCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.bytes = 0
}

// Len returns the number of cached entries, expired or not.
func (c *PageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns hit and miss counts since creation.
func (c *PageCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *PageCache) removeLocked(elem *list.Element) {
	it := elem.Value.(*item)
	c.bytes -= int64(len(it.entry.Body))
	c.order.Remove(elem)
	delete(c.entries, it.key)
}
