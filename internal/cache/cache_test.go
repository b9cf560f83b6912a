// Mixtape - Playlist Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCacheBasicOperations(t *testing.T) {
	c := New[string](Options{Name: "test-basic", TTL: time.Minute})

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists = c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}

}

func TestCacheEntriesImmutableUntilExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New[string](Options{Name: "test-immutable", TTL: 15 * time.Minute, Now: clock.Now})

	c.Set("k", "first")
	clock.Advance(10 * time.Minute)
	c.Set("k", "second")
	if v, _ := c.Get("k"); v != "first" {
		t.Errorf("live entry overwritten: got %q, want first", v)
	}

	// The rejected write must not extend the first entry's lifetime.
	clock.Advance(5 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry outlived its original TTL")
	}

	c.Set("k", "third")
	clock.Advance(time.Minute)
	c.Set("k", "fourth")
	if v, _ := c.Get("k"); v != "third" {
		t.Errorf("got %q, want third", v)
	}

	t.Run("expired entry in place is replaced", func(t *testing.T) {
		c.Set("e", "old")
		clock.Advance(15 * time.Minute)
		c.Set("e", "new")
		if v, ok := c.Get("e"); !ok || v != "new" {
			t.Errorf("Get(e) = %q, %v; want new, true", v, ok)
		}
		if c.Len() != 2 {
			t.Errorf("Len = %d, want 2", c.Len())
		}
	})
}

func TestCacheExpiration(t *testing.T) {
	clock := newFakeClock()
	c := New[int](Options{Name: "test-expiry", TTL: 15 * time.Minute, Now: clock.Now})

	c.Set("k", 1)
	clock.Advance(14 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should still be valid before the TTL")
	}

	clock.Advance(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should expire at the TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed on access, Len = %d", c.Len())
	}
}

func TestCacheMaxEntries(t *testing.T) {
	c := New[int](Options{Name: "test-bound", TTL: time.Hour, MaxEntries: 2})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry b should be evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to remain", k)
		}
	}
	if s := c.GetStats(); s.Evictions != 1 || s.TotalKeys != 2 {
		t.Errorf("stats = %+v, want 1 eviction and 2 keys", s)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[string](Options{Name: "test-clear"})

	c.Set("key1", "v")
	c.Delete("key1")
	if _, ok := c.Get("key1"); ok {
		t.Error("Expected key1 to be deleted")
	}

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
}

func TestCacheCleanup(t *testing.T) {
	clock := newFakeClock()
	c := New[int](Options{Name: "test-cleanup", TTL: time.Minute, Now: clock.Now})

	c.Set("old", 1)
	clock.Advance(30 * time.Second)
	c.Set("new", 2)
	clock.Advance(45 * time.Second)

	if removed := c.Cleanup(); removed != 1 {
		t.Errorf("Cleanup removed %d, want 1", removed)
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("unexpired entry should survive cleanup")
	}
	if got := c.GetStats().LastCleanup; !got.Equal(clock.Now()) {
		t.Errorf("LastCleanup = %v, want %v", got, clock.Now())
	}
}

func TestCacheHitRate(t *testing.T) {
	c := New[int](Options{Name: "test-hitrate"})
	if c.HitRate() != 0 {
		t.Errorf("empty HitRate = %v, want 0", c.HitRate())
	}

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	if got := c.HitRate(); got != 75.0 {
		t.Errorf("HitRate = %v, want 75", got)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int](Options{Name: "test-concurrent", MaxEntries: 50})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%75)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len = %d exceeds MaxEntries", c.Len())
	}
}

func TestJanitor(t *testing.T) {
	clock := newFakeClock()
	c := New[int](Options{Name: "test-janitor", TTL: time.Second, Now: clock.Now})
	c.Set("k", 1)
	clock.Advance(2 * time.Second)

	j := NewJanitor(c, 10*time.Millisecond)
	if !strings.Contains(j.String(), "test-janitor") {
		t.Errorf("String = %q", j.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}
	if c.Len() != 0 {
		t.Error("janitor should have swept the expired entry")
	}
}

func TestGenerateKey(t *testing.T) {
	type params struct {
		Seeds []string
		K     int
	}

	a := GenerateKey("recs", params{Seeds: []string{"x", "y"}, K: 10})
	b := GenerateKey("recs", params{Seeds: []string{"x", "y"}, K: 10})
	c := GenerateKey("recs", params{Seeds: []string{"x", "y"}, K: 11})

	if a != b {
		t.Error("identical params should produce identical keys")
	}
	if a == c {
		t.Error("different params should produce different keys")
	}
	if !strings.HasPrefix(a, "recs:") {
		t.Errorf("key %q should carry the method prefix", a)
	}
}
