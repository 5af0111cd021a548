package cache

import (
	"errors"
	"testing"
	"time"
)

func newTestCache(maxItems int, ttl time.Duration) (*Cache[string, int], *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[string, int](Config{MaxItems: maxItems, TTL: ttl})
	c.now = func() time.Time { return now }
	return c, &now
}

func TestGetSet(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	defer c.Close()

	if _, ok := c.Get("a"); ok {
		t.Fatal("Get() on empty cache should miss")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get() = %d, %v", v, ok)
	}

	hits, misses, rate := c.Stats()
	if hits != 1 || misses != 1 || rate != 50 {
		t.Errorf("Stats() = %d, %d, %v", hits, misses, rate)
	}
}

func TestExpiration(t *testing.T) {
	c, now := newTestCache(10, time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.SetWithTTL("forever", 2, 0)
	*now = now.Add(2 * time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry returned")
	}
	if _, ok := c.Get("forever"); !ok {
		t.Error("entry without TTL expired")
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestEvictOldest(t *testing.T) {
	c, now := newTestCache(2, 0)
	defer c.Close()

	c.Set("a", 1)
	*now = now.Add(time.Second)
	c.Set("b", 2)
	*now = now.Add(time.Second)
	c.Set("b", 3) // overwrite does not evict
	c.Set("c", 4)

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry not evicted")
	}
	if v, _ := c.Get("b"); v != 3 {
		t.Errorf("Get(b) = %d, want 3", v)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestGetOrSet(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	defer c.Close()

	calls := 0
	fn := func() (int, error) { calls++; return 42, nil }
	for i := 0; i < 3; i++ {
		if v, err := c.GetOrSet("k", fn); err != nil || v != 42 {
			t.Fatalf("GetOrSet() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrSet("bad", func() (int, error) { return 0, boom }); err != boom {
		t.Errorf("GetOrSet() error = %v", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed value was cached")
	}
}

func TestDeleteClear(t *testing.T) {
	c, _ := newTestCache(10, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if c.Size() != 1 {
		t.Errorf("Size() after Delete = %d", c.Size())
	}
	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() after Clear = %d", c.Size())
	}
	c.Close()
	c.Close()
}
