// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestLRU_GetAdd(t *testing.T) {
	t.Parallel()

	c := NewLRU[[]byte](3, time.Minute)
	c.Add("/library/metadata/1/thumb/1", []byte{1})
	c.Add("/library/metadata/2/thumb/2", []byte{2})

	v, ok := c.Get("/library/metadata/1/thumb/1")
	if !ok || len(v) != 1 || v[0] != 1 {
		t.Errorf("Get() = %v, %v", v, ok)
	}
	if _, ok := c.Get("/missing"); ok {
		t.Error("Get(/missing) found a value")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// "a" becomes most recently used, so "b" is the oldest.
	c.Get("a")
	c.Add("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("b was not evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s was evicted", key)
		}
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](10, 50*time.Millisecond)
	c.Add("a", 1)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("a not found before expiry")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("a found after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expired Get, want 0", c.Len())
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	t.Parallel()

	c := NewLRU[string](2, time.Minute)
	c.Add("a", "old")
	c.Add("a", "new")

	if v, _ := c.Get("a"); v != "new" {
		t.Errorf("Get(a) = %q, want new", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_Remove(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](2, time.Minute)
	c.Add("a", 1)

	if !c.Remove("a") {
		t.Error("Remove(a) = false")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) = true")
	}
}

func TestLRU_Stats(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](2, time.Minute)
	c.Add("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("b")

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d, %d, %d; want 2, 1, 1", hits, misses, size)
	}
}

func TestLRU_Defaults(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](0, 0)
	if c.capacity != 64 || c.ttl != 10*time.Minute {
		t.Errorf("defaults = %d, %v", c.capacity, c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](50, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := strconv.Itoa((g*200 + i) % 75)
				c.Add(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d, exceeds capacity 50", c.Len())
	}
}

func BenchmarkLRU_Get(b *testing.B) {
	c := NewLRU[int](1000, time.Minute)
	for i := 0; i < 1000; i++ {
		c.Add(strconv.Itoa(i), i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(strconv.Itoa(i % 1000))
	}
}
