package cache

import (
	"slices"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](0, nil)
	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
	c.Set("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after replace = %d, want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheSoftLimitEvictsLRU(t *testing.T) {
	var evicted []string
	c := New[string, int](2, func(k string, _ int) { evicted = append(evicted, k) })
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if !slices.Equal(evicted, []string{"b"}) {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry a should survive")
	}
}

func TestCacheSweep(t *testing.T) {
	var evicted []string
	c := New[string, int](0, func(k string, _ int) { evicted = append(evicted, k) })
	c.Set("old", 1)
	c.Set("hot", 2)

	for range 3 {
		c.Advance()
		c.Get("hot")
	}
	if n := c.Sweep(2); n != 1 {
		t.Errorf("Sweep(2) = %d, want 1", n)
	}
	if !slices.Equal(evicted, []string{"old"}) {
		t.Errorf("evicted = %v, want [old]", evicted)
	}
	if n := c.Sweep(2); n != 0 {
		t.Errorf("second Sweep(2) = %d, want 0", n)
	}
	if s := c.Stats(); s.Evictions != 1 || s.Frame != 3 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCacheTakeSkipsCallback(t *testing.T) {
	calls := 0
	c := New[int, string](0, func(int, string) { calls++ })
	c.Set(1, "x")
	v, ok := c.Take(1)
	if !ok || v != "x" {
		t.Fatalf("Take(1) = %q, %v", v, ok)
	}
	if calls != 0 {
		t.Errorf("eviction callback called %d times, want 0", calls)
	}
	if _, ok := c.Take(1); ok {
		t.Error("second Take should report false")
	}
}

func TestCacheClear(t *testing.T) {
	calls := 0
	c := New[int, int](0, func(int, int) { calls++ })
	for i := range 5 {
		c.Set(i, i)
	}
	c.Clear()
	if calls != 5 || c.Len() != 0 {
		t.Errorf("after Clear calls=%d Len=%d, want 5 0", calls, c.Len())
	}
}

func TestCachePinnedSurvivesEviction(t *testing.T) {
	busy := map[string]bool{"a": true, "b": true}
	var evicted []string
	c := New[string, int](1, func(k string, _ int) { evicted = append(evicted, k) })
	c.SetPinned(func(k string, _ int) bool { return busy[k] })

	c.Set("a", 1)
	c.Set("b", 2)
	if c.Len() != 2 || len(evicted) != 0 {
		t.Errorf("Len() = %d evicted = %v, want 2 and none", c.Len(), evicted)
	}

	for range 4 {
		c.Advance()
	}
	if n := c.Sweep(1); n != 0 {
		t.Errorf("Sweep(1) = %d with every entry pinned, want 0", n)
	}
	busy["b"] = false
	if n := c.Sweep(1); n != 1 {
		t.Errorf("Sweep(1) = %d, want 1", n)
	}
	if !slices.Equal(evicted, []string{"b"}) {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("pinned entry a was evicted")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestCacheSweepKeepsCurrentFrame(t *testing.T) {
	c := New[string, int](0, nil)
	c.Set("a", 1)
	if n := c.Sweep(0); n != 0 {
		t.Errorf("Sweep(0) = %d, want 0 for an entry touched this frame", n)
	}
	c.Advance()
	if n := c.Sweep(0); n != 1 {
		t.Errorf("Sweep(0) after Advance = %d, want 1", n)
	}
}

func BenchmarkCacheGet(b *testing.B) {
	c := New[int, int](1000, nil)
	for i := range 100 {
		c.Set(i, i)
	}
	b.ReportAllocs()
	for b.Loop() {
		c.Get(50)
	}
}
