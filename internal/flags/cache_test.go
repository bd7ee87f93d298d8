package flags

import (
	"testing"
	"time"
)

// fakeClock drives the cache's notion of time from test code.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeCache() (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache()
	c.now = clock.now
	return c, clock
}

func TestCacheTTL(t *testing.T) {
	c, clock := newFakeCache()
	c.Put("sdk_enable_ad_id", "true")

	if v, ok := c.Get("sdk_enable_ad_id"); !ok || v != "true" {
		t.Fatalf("Get() = %q, %v; want \"true\", true", v, ok)
	}

	clock.advance(valueTTL - time.Second)
	if _, ok := c.Get("sdk_enable_ad_id"); !ok {
		t.Fatal("entry should still be valid inside TTL window")
	}

	clock.advance(2 * time.Second)
	if _, ok := c.Get("sdk_enable_ad_id"); ok {
		t.Fatal("entry should expire past TTL window")
	}
}

func TestCachePutRestartsTTL(t *testing.T) {
	c, clock := newFakeCache()
	c.Put("sdk_config", "{}")

	clock.advance(valueTTL - time.Second)
	c.Put("sdk_config", "{\"a\":1}")

	clock.advance(2 * time.Second)
	if v, ok := c.Get("sdk_config"); !ok || v != "{\"a\":1}" {
		t.Fatalf("Get() = %q, %v; want rewritten value still valid", v, ok)
	}
}

func TestCacheClear(t *testing.T) {
	c, _ := newFakeCache()
	c.Put("a", "1")
	c.Put("b", "2")
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	c.MarkRefreshed()
	c.Clear()

	if c.Len() != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", c.Len())
	}
	if c.ShouldRefresh() {
		t.Fatal("Clear should not reset the refresh timestamp")
	}
}

func TestCacheShouldRefresh(t *testing.T) {
	c, clock := newFakeCache()

	if !c.ShouldRefresh() {
		t.Fatal("a never-refreshed cache should want a refresh")
	}

	c.MarkRefreshed()
	if c.ShouldRefresh() {
		t.Fatal("freshly refreshed cache should not want a refresh")
	}

	clock.advance(c.refreshEvery - time.Second)
	if c.ShouldRefresh() {
		t.Fatal("cache inside the refresh window should not want a refresh")
	}

	clock.advance(2 * time.Second)
	if !c.ShouldRefresh() {
		t.Fatal("cache past the refresh window should want a refresh")
	}
}

func TestCacheSnapshot(t *testing.T) {
	c, _ := newFakeCache()
	c.Put("a", "1")

	snap := c.Snapshot()
	if snap["a"] != "1" {
		t.Fatalf("Snapshot()[a] = %q, want \"1\"", snap["a"])
	}

	snap["a"] = "mutated"
	if v, _ := c.Get("a"); v != "1" {
		t.Fatal("mutating the snapshot must not touch the cache")
	}
}
