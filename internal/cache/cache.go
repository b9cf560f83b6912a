// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

// Package cache provides a bounded, thread-safe TTL cache with
// least-recently-used eviction.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mixtape/internal/metrics"
)

// Options configures a Cache.
type Options struct {
	// Name labels the cache in metrics.
	Name string

	// TTL is how long an entry stays valid after Set. Default 15m.
	TTL time.Duration

	// MaxEntries bounds the cache; the least recently used entry is evicted
	// first. Zero means unbounded.
	MaxEntries int

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	prev      *entry[V]
	next      *entry[V]
}

// Cache maps string keys to values of type V.
type Cache[V any] struct {
	mu sync.Mutex

	name       string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	items map[string]*entry[V]

	// head.next is most recently used, tail.prev least
	head *entry[V]
	tail *entry[V]

	stats Stats
}

// Stats tracks cache performance.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a cache.
func New[V any](opts Options) *Cache[V] {
	if opts.TTL <= 0 {
		opts.TTL = 15 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Name == "" {
		opts.Name = "default"
	}

	c := &Cache[V]{
		name:       opts.Name,
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		now:        opts.Now,
		items:      make(map[string]*entry[V]),
		head:       &entry[V]{},
		tail:       &entry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Name returns the metrics label of the cache.
func (c *Cache[V]) Name() string {
	return c.name
}

// Get returns the value for key if present and unexpired. Expired entries
// are removed on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		c.recordMiss()
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.removeEntry(e)
		c.recordEviction(1)
		c.recordMiss()
		return zero, false
	}

	c.moveToFront(e)
	c.stats.Hits++
	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return e.value, true
}

// Set stores value under key with the cache TTL. An entry is immutable until
// it expires: Set on a live key keeps the first value and its expiry.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiresAt := now.Add(c.ttl)
	if e, ok := c.items[key]; ok {
		if now.Before(e.expiresAt) {
			return
		}
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	if c.maxEntries > 0 {
		evicted := 0
		for len(c.items) > c.maxEntries {
			c.removeEntry(c.tail.prev)
			evicted++
		}
		c.recordEviction(evicted)
	}
	c.updateSize()
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.removeEntry(e)
		c.recordEviction(1)
		c.updateSize()
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordEviction(len(c.items))
	c.items = make(map[string]*entry[V])
	c.head.next = c.tail
	c.tail.prev = c.head
	c.updateSize()
}

// Len returns the number of stored entries, expired ones included until
// they are touched or swept.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Cleanup removes expired entries and returns how many it removed.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if !now.Before(e.expiresAt) {
			c.removeEntry(e)
			removed++
		}
		e = prev
	}
	c.recordEviction(removed)
	c.stats.LastCleanup = now
	c.updateSize()
	return removed
}

// GetStats returns a snapshot of the statistics.
func (c *Cache[V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.TotalKeys = int64(len(c.items))
	return s
}

// HitRate returns the hit rate as a percentage.
func (c *Cache[V]) HitRate() float64 {
	s := c.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// Internal methods, called with the lock held.

func (c *Cache[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *Cache[V]) moveToFront(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *Cache[V]) removeEntry(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *Cache[V]) recordMiss() {
	c.stats.Misses++
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
}

func (c *Cache[V]) recordEviction(n int) {
	if n <= 0 {
		return
	}
	c.stats.Evictions += int64(n)
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
}

func (c *Cache[V]) updateSize() {
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.items)))
}

// Sweeper is implemented by caches the Janitor can sweep.
type Sweeper interface {
	Cleanup() int
	Name() string
}

// Janitor periodically sweeps expired entries. It is a suture.Service.
type Janitor struct {
	target   Sweeper
	interval time.Duration
}

// NewJanitor sweeps target every interval (default 5m).
func NewJanitor(target Sweeper, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Janitor{target: target, interval: interval}
}

// Serve runs until ctx is canceled.
func (j *Janitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.target.Cleanup()
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (j *Janitor) String() string {
	return "cache-janitor-" + j.target.Name()
}

// GenerateKey creates a stable key from a method name and parameters.
func GenerateKey(method string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
