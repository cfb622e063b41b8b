// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package pathcache bounds the memory cost of repeatedly splitting the same
// dotted field paths ("a.b.c") used throughout the condition evaluator. It
// is a process-local, per-engine cache — never a package-level global, per
// the no-shared-mutable-state design note in spec §9.
package pathcache

import "strings"

// DefaultCapacity is the default number of distinct paths retained before
// the oldest entries are evicted.
const DefaultCapacity = 1000

// Cache is a bounded FIFO map from a dotted path string to its parsed
// segments. It is not safe for concurrent use without external
// synchronization — callers (the condition evaluator) already hold the
// engine-wide mutex for the duration of a decision.
type Cache struct {
	capacity int
	segments map[string][]string
	order    []string
}

// New creates a Cache with the given capacity. A non-positive capacity
// falls back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		segments: make(map[string][]string, capacity),
	}
}

// Split returns the dot-separated segments of path, splitting and caching
// on first use.
func (c *Cache) Split(path string) []string {
	if segs, ok := c.segments[path]; ok {
		return segs
	}
	segs := strings.Split(path, ".")
	c.insert(path, segs)
	return segs
}

func (c *Cache) insert(path string, segs []string) {
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.segments, oldest)
	}
	c.segments[path] = segs
	c.order = append(c.order, path)
}

// Len reports the number of distinct paths currently cached.
func (c *Cache) Len() int {
	return len(c.segments)
}
