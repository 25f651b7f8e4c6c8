package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int, string](2, time.Minute)
	c.Set(1, "a")
	c.Set(2, "b")
	c.Get(1)
	c.Set(3, "c")

	if _, ok := c.Get(2); ok {
		t.Fatal("expected least recently used key to be evicted")
	}
	if v, ok := c.Get(1); !ok || v != "a" {
		t.Fatalf("Get(1) = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("Size = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string, int](10, time.Minute)
	c.now = clock.now

	c.Set("a", 1)
	c.Set("b", 2)
	clock.t = clock.t.Add(30 * time.Second)
	c.Set("b", 3)

	clock.t = clock.t.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to expire")
	}
	if v, ok := c.Get("b"); !ok || v != 3 {
		t.Fatalf("Get(b) = %d, %v", v, ok)
	}

	clock.t = clock.t.Add(time.Hour)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d, want 0", c.Size())
	}
}

type countingCleaner struct{ n int }

func (c *countingCleaner) CleanExpired() int { c.n++; return 2 }

func TestManagerSweep(t *testing.T) {
	m := NewManager(nil)
	a, b := &countingCleaner{}, &countingCleaner{}
	m.Register(a)
	m.Register(b)

	if got := m.Sweep(); got != 4 {
		t.Fatalf("Sweep = %d, want 4", got)
	}
	if a.n != 1 || b.n != 1 {
		t.Fatalf("expected each cleaner called once, got %d and %d", a.n, b.n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
