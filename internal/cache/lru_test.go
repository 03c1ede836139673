// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[string](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned ok")
	}

	c.Set("a", "one")
	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Get(a) = miss, want hit")
	}
	if got != "one" {
		t.Errorf("Get(a) = %q, want %q", got, "one")
	}

	c.Set("a", "two")
	got, _ = c.Get("a")
	if got != "two" {
		t.Errorf("Get(a) after update = %q, want %q", got, "two")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](3, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch a so b becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) = miss, want hit")
	}

	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b survived eviction, want it evicted as least recently used")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("Get(%s) = miss, want hit", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	c := NewLRU[int](8, 10*time.Millisecond)

	c.Set("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) before expiry = miss, want hit")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after expiry = hit, want miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() after lazy expiry = %d, want 0", c.Len())
	}
}

func TestLRU_Remove(t *testing.T) {
	c := NewLRU[int](8, time.Minute)

	c.Set("a", 1)
	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after Remove = hit, want miss")
	}

	// Removing an absent key must not panic.
	c.Remove("never-set")
}

func TestLRU_Purge(t *testing.T) {
	c := NewLRU[int](8, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	if c.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after Purge = hit, want miss")
	}
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU[int](8, time.Minute)

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	hits, misses := c.Stats()
	if hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}

func TestNewLRU_Defaults(t *testing.T) {
	c := NewLRU[int](0, 0)

	if c.capacity != 4096 {
		t.Errorf("capacity = %d, want 4096", c.capacity)
	}
	if c.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", c.ttl)
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU[int](128, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("key-%d", j%32)
				c.Set(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 128 {
		t.Errorf("Len() = %d, want <= capacity 128", c.Len())
	}
}
