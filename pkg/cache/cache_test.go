package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestCache_GetSet(t *testing.T) {
	c := New[string]()
	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache hit")
	}
	c.Set("a", "one")
	if v, ok := c.Get("a"); !ok || v != "one" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	c.Set("a", "uno")
	if v, _ := c.Get("a"); v != "uno" {
		t.Errorf("overwrite = %q", v)
	}
	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 || st.Size != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c := New[int](WithSize(2))
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // b is now least recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("evictions = %d", c.Stats().Evictions)
	}
}

func TestCache_TTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	c := New[int](WithTTL(time.Minute), WithClock(clock.now))
	c.Set("a", 1)

	clock.t = clock.t.Add(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry expired early")
	}
	clock.t = clock.t.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be dropped, len = %d", c.Len())
	}
}

func TestCache_ExpiredMakeRoomBeforeLRU(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	c := New[int](WithSize(2), WithTTL(time.Minute), WithClock(clock.now))
	c.Set("old", 1)
	clock.t = clock.t.Add(30 * time.Second)
	c.Set("fresh", 2)
	clock.t = clock.t.Add(45 * time.Second) // old expired, fresh not

	c.Set("new", 3)
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh should survive; the expired entry makes room")
	}
}

func TestCache_InvalidateClear(t *testing.T) {
	c := New[int]()
	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be gone")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len after clear = %d", c.Len())
	}
}
