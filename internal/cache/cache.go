// Package cache is a small in-memory cache for layout results, so a view
// that flips back to an earlier filter query skips the force simulation.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// EvictionStrategy defines how cache entries are removed
type EvictionStrategy int

const (
	// LRU removes least recently used entries
	LRU EvictionStrategy = iota
	// LFU removes least frequently used entries
	LFU
	// FIFO removes oldest entries first
	FIFO
)

func (s EvictionStrategy) String() string {
	switch s {
	case LFU:
		return "lfu"
	case FIFO:
		return "fifo"
	default:
		return "lru"
	}
}

// ParseStrategy maps "lru", "lfu" or "fifo" to a strategy.
func ParseStrategy(s string) (EvictionStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lru":
		return LRU, nil
	case "lfu":
		return LFU, nil
	case "fifo":
		return FIFO, nil
	}
	return LRU, fmt.Errorf("unknown eviction strategy %q", s)
}

// Config holds cache configuration
type Config struct {
	MaxEntries int              // Maximum entry count; 0 means unbounded
	MaxAge     time.Duration    // Maximum age for entries; 0 means no expiry
	Strategy   EvictionStrategy // Eviction strategy (default: LRU)

	// Now is the clock; nil uses time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxEntries: 16,
		MaxAge:     time.Hour,
		Strategy:   LRU,
	}
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	EntryCount int   `json:"entry_count"`
}

type entry[V any] struct {
	value       V
	created     time.Time
	lastAccess  time.Time
	accessCount int
	// seq orders inserts and accesses; it breaks ties between equal
	// timestamps.
	inserted uint64
	touched  uint64
}

// Cache maps keys to values of type V. It is safe for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	cfg     Config
	seq     uint64
	stats   Stats
}

// New creates a new cache instance
func New[V any](cfg Config) *Cache[V] {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Cache[V]{
		entries: make(map[string]*entry[V]),
		cfg:     cfg,
	}
}

// Get retrieves a cached value
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	now := c.cfg.Now()
	if c.expired(e, now) {
		delete(c.entries, key)
		c.stats.Misses++
		c.stats.EntryCount = len(c.entries)
		return zero, false
	}

	c.seq++
	e.lastAccess = now
	e.touched = c.seq
	e.accessCount++
	c.stats.Hits++
	return e.value, true
}

// Put stores a value, evicting per the strategy when full.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.cfg.Now()
	c.seq++
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.created = now
		e.lastAccess = now
		e.inserted = c.seq
		e.touched = c.seq
		return
	}

	c.purgeExpired(now)
	for c.cfg.MaxEntries > 0 && len(c.entries) >= c.cfg.MaxEntries {
		if !c.evictOne() {
			break
		}
	}
	c.entries[key] = &entry[V]{
		value:      value,
		created:    now,
		lastAccess: now,
		inserted:   c.seq,
		touched:    c.seq,
	}
	c.stats.EntryCount = len(c.entries)
}

// Delete removes an entry from the cache
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.stats.EntryCount = len(c.entries)
}

// Clear removes all entries and resets statistics.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[V])
	c.stats = Stats{}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetStats returns cache statistics
func (c *Cache[V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Cache[V]) expired(e *entry[V], now time.Time) bool {
	// If maxAge is 0 or negative, entries never expire
	if c.cfg.MaxAge <= 0 {
		return false
	}
	return now.Sub(e.created) > c.cfg.MaxAge
}

func (c *Cache[V]) purgeExpired(now time.Time) {
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
		}
	}
}

// evictOne removes the victim chosen by the strategy. Caller holds mu.
func (c *Cache[V]) evictOne() bool {
	var victimKey string
	var victim *entry[V]
	for key, e := range c.entries {
		if victim == nil || c.before(e, victim) {
			victimKey, victim = key, e
		}
	}
	if victim == nil {
		return false
	}
	delete(c.entries, victimKey)
	c.stats.Evictions++
	return true
}

// before reports whether a should be evicted ahead of b.
func (c *Cache[V]) before(a, b *entry[V]) bool {
	switch c.cfg.Strategy {
	case LFU:
		if a.accessCount != b.accessCount {
			return a.accessCount < b.accessCount
		}
		return a.touched < b.touched
	case FIFO:
		return a.inserted < b.inserted
	default:
		return a.touched < b.touched
	}
}

// Key generates a cache key from inputs
func Key(inputs ...string) string {
	h := sha256.New()
	for _, input := range inputs {
		h.Write([]byte(input))
		// separator so ("ab","c") and ("a","bc") differ
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// KeyOf hashes the JSON encoding of each value.
func KeyOf(values ...any) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("failed to encode cache key input: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
