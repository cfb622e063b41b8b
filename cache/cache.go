// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache is the per-decision LRU cache: O(1) get/set/evict via an
// intrusive doubly-linked list plus an index map, TTL expiry-on-read, and
// prefix-based invalidation so a single role or user mutation can drop every
// affected entry without a full scan's cost dominating the hot path.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/wardenhq/warden/core"
	"github.com/wardenhq/warden/internal/hashutil"
)

// DefaultMaxSize and DefaultTTL are used when a Cache is constructed with a
// zero-value Options.
const (
	DefaultMaxSize = 10_000
	DefaultTTL     = 5 * time.Minute
)

// Options configures a Cache at construction.
type Options struct {
	MaxSize int
	TTL     time.Duration
}

type entry struct {
	key      string
	value    core.Decision
	storedAt time.Time
}

// Cache is an LRU cache of decisions keyed by "user|resource|action" plus an
// optional context-hash segment. It is safe for concurrent use: its own
// mutex serializes access.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration

	ll    *list.List               // front = most recently used
	index map[string]*list.Element // key -> element holding *entry

	hits      int64
	misses    int64
	evictions int64
}

// New creates a Cache. A non-positive MaxSize/TTL falls back to the
// package defaults.
func New(opts Options) *Cache {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		ll:      list.New(),
		index:   make(map[string]*list.Element),
	}
}

// Key renders the canonical cache key for a decision. ctx is the decision
// context used for ABAC/policy evaluation, or nil for an RBAC-only check;
// it is folded into a fourth, stable-hashed segment so two structurally
// identical contexts always produce the same key regardless of map
// iteration order.
func Key(user, resource, action string, ctx any) string {
	var b strings.Builder
	b.WriteString(user)
	b.WriteByte('|')
	b.WriteString(resource)
	b.WriteByte('|')
	b.WriteString(action)
	if ctx != nil {
		b.WriteByte('|')
		b.WriteString(hashutil.Stable(ctx))
	}
	return b.String()
}

// Get returns the cached decision for key, or false if absent or expired.
// An expired entry is evicted as part of the read.
func (c *Cache) Get(key string) (core.Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		c.misses++
		return core.Decision{}, false
	}
	e := el.Value.(*entry)
	if c.ttl > 0 && time.Since(e.storedAt) > c.ttl {
		c.removeElement(el)
		c.misses++
		return core.Decision{}, false
	}

	c.ll.MoveToFront(el)
	c.hits++
	d := e.value
	d.CacheHit = true
	return d, true
}

// Set stores value under key, marking it most-recently-used. If the cache
// is at capacity, the least-recently-used entry is evicted first.
func (c *Cache) Set(key string, value core.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.storedAt = time.Now()
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.maxSize {
		c.evictOldest()
	}

	e := &entry{key: key, value: value, storedAt: time.Now()}
	el := c.ll.PushFront(e)
	c.index[key] = el
}

// Invalidate drops every cached key starting with prefix (e.g. "alice|" to
// drop every decision for a single user).
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var dropped int
	for key, el := range c.index {
		if strings.HasPrefix(key, prefix) {
			c.removeElement(el)
			dropped++
		}
	}
	return dropped
}

// Clear empties the cache without touching hit/miss/eviction counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.index = make(map[string]*list.Element)
}

// Stats is a point-in-time snapshot of cache size and effectiveness.
type Stats struct {
	Size      int     `json:"size"`
	MaxSize   int     `json:"maxSize"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hitRate"`
	Evictions int64   `json:"evictions"`
}

// Stats returns the current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var rate float64
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Size:      c.ll.Len(),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		HitRate:   rate,
		Evictions: c.evictions,
	}
}

func (c *Cache) evictOldest() {
	oldest := c.ll.Back()
	if oldest == nil {
		return
	}
	c.removeElement(oldest)
	c.evictions++
}

func (c *Cache) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	delete(c.index, e.key)
	c.ll.Remove(el)
}
