package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](size, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUEviction(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("least recently used entry should be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("Size = %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	clock.t = clock.t.Add(30 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("entry expired too early")
	}

	clock.t = clock.t.Add(31 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d", c.Size())
	}
}

func TestLRUDeletePrefix(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("alice:month", 1)
	c.Set("alice:year", 2)
	c.Set("alicia:month", 3)

	if n := c.DeletePrefix("alice:"); n != 2 {
		t.Fatalf("DeletePrefix removed %d", n)
	}
	if _, ok := c.Get("alicia:month"); !ok {
		t.Fatalf("unrelated key removed")
	}
}

func TestManagerStop(t *testing.T) {
	c, clock := newTestCache(10, time.Second)
	c.Set("a", 1)
	clock.t = clock.t.Add(2 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("CleanAll removed %d", n)
	}

	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()

	NewManager(nil).Stop() // never started
}
