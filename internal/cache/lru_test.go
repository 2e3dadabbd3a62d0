package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache should miss")
	}

	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %v, %v, want 1, true", v, ok)
	}
}

func TestLRUCache_EvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry should survive eviction")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should miss")
	}
	if n := c.CleanExpired(); n != 0 {
		// Get already removed the expired element.
		t.Errorf("CleanExpired() = %d, want 0", n)
	}
}

func TestLRUCache_Clear(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("2025-01", 1)
	c.Set("2025-02", 2)
	c.Set("all", 3)

	c.Clear()

	if c.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", c.Size())
	}
	if _, ok := c.Get("all"); ok {
		t.Error("cleared entry should miss")
	}

	// Cache remains usable after Clear.
	c.Set("all", 4)
	if v, ok := c.Get("all"); !ok || v != 4 {
		t.Errorf("Get(all) after reuse = %v, %v, want 4, true", v, ok)
	}
}
