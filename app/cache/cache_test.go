package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/dkenzhe/curator/app/recommend"
)

func testRecords(why string) []recommend.Recommendation {
	return []recommend.Recommendation{
		{ID: "1", Title: "First", Why: why},
		{ID: "2", Title: "Second", Why: why},
	}
}

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	current time.Time
}

func (f *fakeClock) now() time.Time {
	return f.current
}

func (f *fakeClock) advance(d time.Duration) {
	f.current = f.current.Add(d)
}

func newTestCache(ttl time.Duration, maxSize int) (*Cache, *fakeClock) {
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New(ttl, maxSize)
	c.now = clock.now
	return c, clock
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(10*time.Minute, 100)

	records := testRecords("great pick")
	c.Set("books:genre=thriller:ru", records)

	got, ok := c.Get("books:genre=thriller:ru")
	if !ok {
		t.Fatal("Expected cache hit immediately after Set")
	}
	if len(got) != 2 || got[0].ID != "1" {
		t.Errorf("Unexpected cached records: %+v", got)
	}
}

func TestCache_ExpiredEntryIsMissAndEvicted(t *testing.T) {
	c, clock := newTestCache(10*time.Minute, 100)

	c.Set("key", testRecords("x"))
	clock.advance(10*time.Minute + time.Second)

	if _, ok := c.Get("key"); ok {
		t.Error("Expected miss after TTL elapsed")
	}

	stats := c.Stats()
	if stats.Size != 0 {
		t.Errorf("Expired entry should be evicted on access, size = %d", stats.Size)
	}
}

func TestCache_Sweep(t *testing.T) {
	c, clock := newTestCache(10*time.Minute, 100)

	c.Set("old1", testRecords("x"))
	c.Set("old2", testRecords("x"))
	clock.advance(11 * time.Minute)
	c.Set("fresh", testRecords("x"))

	removed := c.Sweep()
	if removed != 2 {
		t.Errorf("Expected 2 entries swept, got %d", removed)
	}

	if _, ok := c.Get("fresh"); !ok {
		t.Error("Fresh entry should survive the sweep")
	}
}

func TestCache_SetSweepsAtCapacity(t *testing.T) {
	c, clock := newTestCache(10*time.Minute, 3)

	c.Set("a", testRecords("x"))
	c.Set("b", testRecords("x"))
	c.Set("c", testRecords("x"))
	clock.advance(11 * time.Minute)

	// All three are expired now; the capacity sweep should clear them.
	c.Set("d", testRecords("x"))

	stats := c.Stats()
	if stats.Size != 1 {
		t.Errorf("Expected size 1 after capacity sweep, got %d", stats.Size)
	}
}

func TestCache_MayGrowPastCapacityUnderFreshBurst(t *testing.T) {
	c, _ := newTestCache(10*time.Minute, 2)

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("key-%d", i), testRecords("x"))
	}

	// Nothing is expired, so the sweep cannot free room. The cache grows
	// past its soft cap instead of rejecting entries.
	stats := c.Stats()
	if stats.Size != 5 {
		t.Errorf("Expected size 5, got %d", stats.Size)
	}
}

func TestCache_Clear(t *testing.T) {
	c, _ := newTestCache(10*time.Minute, 100)

	c.Set("a", testRecords("x"))
	c.Set("b", testRecords("x"))
	c.Clear()

	if stats := c.Stats(); stats.Size != 0 {
		t.Errorf("Expected empty cache after Clear, size = %d", stats.Size)
	}
}

func TestCache_Stats(t *testing.T) {
	c, clock := newTestCache(10*time.Minute, 100)

	c.Set("hot", testRecords("x"))
	c.Set("cold", testRecords("x"))

	c.Get("hot")
	c.Get("hot")
	c.Get("hot")

	clock.advance(11 * time.Minute)
	c.Set("fresh", testRecords("x"))

	stats := c.Stats()
	if stats.Size != 3 {
		t.Errorf("Expected size 3, got %d", stats.Size)
	}
	if stats.TotalHits != 3 {
		t.Errorf("Expected 3 total hits, got %d", stats.TotalHits)
	}
	if stats.ExpiredCount != 2 {
		t.Errorf("Expected 2 expired-but-unswept entries, got %d", stats.ExpiredCount)
	}
}

func TestCache_Key(t *testing.T) {
	key := Key(recommend.KindBooks, "genre=thriller", "ru")
	if key != "books:genre=thriller:ru" {
		t.Errorf("Unexpected key: %q", key)
	}
}
