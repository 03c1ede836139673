// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package cache

import (
	"sync"
	"time"
)

// entry is a node in the LRU list.
type entry[V any] struct {
	key       string
	value     V
	prev      *entry[V]
	next      *entry[V]
	expiresAt time.Time
}

// LRU is a thread-safe least-recently-used cache with per-entry TTL.
//
// A doubly-linked list tracks recency and a map gives O(1) lookup, so Get,
// Set, Remove and eviction are all O(1). Expired entries are dropped lazily
// on access.
type LRU[V any] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	items map[string]*entry[V]

	// head.next is the most recently used, tail.prev the least.
	head *entry[V]
	tail *entry[V]

	hits   int64
	misses int64
}

// NewLRU creates an LRU holding at most capacity entries, each live for ttl.
// Non-positive arguments fall back to 4096 entries and 5 minutes.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 4096
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry[V], capacity),
		head:     &entry[V]{},
		tail:     &entry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the value for key and marks it most recently used. Expired
// entries count as misses and are removed.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		c.remove(e)
		c.misses++
		return zero, false
	}

	c.moveToFront(e)
	c.hits++
	return e.value, true
}

// Set adds or replaces the value for key, evicting the least recently used
// entry when at capacity.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = time.Now().Add(c.ttl)
		c.moveToFront(e)
		return
	}

	if len(c.items) >= c.capacity {
		if lru := c.tail.prev; lru != c.head {
			c.remove(lru)
		}
	}

	e := &entry[V]{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.items[key] = e
	c.pushFront(e)
}

// Remove deletes key from the cache if present.
func (c *LRU[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.remove(e)
	}
}

// Len returns the number of entries, including any not yet lazily expired.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cumulative hit and miss counts.
func (c *LRU[V]) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Purge empties the cache. Stats are preserved.
func (c *LRU[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

func (c *LRU[V]) pushFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) unlink(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
}

func (c *LRU[V]) moveToFront(e *entry[V]) {
	c.unlink(e)
	c.pushFront(e)
}

func (c *LRU[V]) remove(e *entry[V]) {
	c.unlink(e)
	delete(c.items, e.key)
}
