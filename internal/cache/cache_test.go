package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("a", 42)
	v, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.(int) != 42 {
		t.Errorf("value = %v, want 42", v)
	}
}

func TestExpiry(t *testing.T) {
	c := New(10, time.Minute)
	current := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("a", "fresh")

	current = current.Add(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("expected hit before TTL")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after TTL")
	}
}

func TestBound(t *testing.T) {
	c := New(2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if len(c.entries) > 2 {
		t.Errorf("entries = %d, want at most 2", len(c.entries))
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("most recent entry should survive eviction")
	}
}

func TestEvictionPrefersExpired(t *testing.T) {
	c := New(2, time.Minute)
	current := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("old", 1)
	current = current.Add(2 * time.Minute) // "old" expires
	c.Set("fresh", 2)
	c.Set("newer", 3)

	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry should survive when an expired one could be evicted")
	}
	if _, ok := c.Get("newer"); !ok {
		t.Error("newest entry should be present")
	}
}

func TestInvalidate(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("a", 1)
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after invalidate")
	}
}
