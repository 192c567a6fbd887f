package cache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dkenzhe/curator/app/recommend"
)

// Cache is a TTL-bound store of produced recommendation lists, keyed by
// (kind, canonical filter fingerprint, locale). Entries past their expiry
// are treated as absent even before a sweep removes them. The capacity is a
// soft bound: Set runs a best-effort sweep at capacity but never refuses a
// fresh entry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

type entry struct {
	records []recommend.Recommendation
	expires time.Time
	hits    int
}

// Stats is a read-only snapshot of cache state.
type Stats struct {
	Size         int     `json:"size"`
	MaxSize      int     `json:"max_size"`
	TotalHits    int     `json:"total_hits"`
	ExpiredCount int     `json:"expired_count"`
	HitRate      float64 `json:"hit_rate"`
}

func New(ttl time.Duration, maxSize int) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Key builds the canonical cache key for a recommendation request.
func Key(kind recommend.Kind, fingerprint, locale string) string {
	return string(kind) + ":" + fingerprint + ":" + locale
}

// Get returns the stored list if present and not expired. An expired hit is
// a miss and evicts the entry eagerly.
func (c *Cache) Get(key string) ([]recommend.Recommendation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}

	e.hits++
	return e.records, true
}

// Set stores a list with expiry now+TTL. At capacity it sweeps expired
// entries first; the store may still grow past capacity under a burst of
// fresh entries, which is accepted.
func (c *Cache) Set(key string, records []recommend.Recommendation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.sweepLocked()
	}

	c.entries[key] = &entry{
		records: records,
		expires: c.now().Add(c.ttl),
	}
}

// Clear drops all entries unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	slog.Info("Recommendation cache cleared")
}

// Sweep removes all expired entries and returns how many were removed.
// Called periodically by the scheduler to bound memory growth under low
// query volume.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sweepLocked()
}

func (c *Cache) sweepLocked() int {
	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats reports size, accumulated hits and the count of expired entries not
// yet swept. Never affects correctness.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stats := Stats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
	}
	for _, e := range c.entries {
		stats.TotalHits += e.hits
		if now.After(e.expires) {
			stats.ExpiredCount++
		}
	}
	if stats.Size > 0 {
		stats.HitRate = float64(stats.TotalHits) / float64(stats.Size)
	}
	return stats
}
