package cache

import (
	"sync/atomic"
	"time"

	"codex-manager/core/codex"
)

// TypeStats is the diagnostic snapshot for one cached record type.
type TypeStats struct {
	Records        int       `json:"records"`
	LoadedAt       time.Time `json:"loadedAt"`
	AgeSeconds     float64   `json:"ageSeconds"`
	LastAccessedAt time.Time `json:"lastAccessedAt,omitempty"`
	AccessCount    int64     `json:"accessCount"`
}

// Stats is a point-in-time diagnostic snapshot of the cache.
type Stats struct {
	Entries    int                             `json:"entries"`
	MaxEntries int                             `json:"maxEntries"`
	Eviction   string                          `json:"eviction"`
	Hits       int64                           `json:"hits"`
	Misses     int64                           `json:"misses"`
	Evictions  int64                           `json:"evictions"`
	InFlight   int64                           `json:"inFlight"`
	PerType    map[codex.RecordType]*TypeStats `json:"perType"`
}

// Stats builds a snapshot of counts, hit/miss tallies, and per-type sizes.
// Reading stats does not count as an access for the eviction policy.
func (c *DataCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	stats := Stats{
		Entries:    len(c.entries),
		MaxEntries: c.maxEntries,
		Eviction:   c.eviction,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evicted,
		InFlight:   atomic.LoadInt64(&c.inflight),
		PerType:    make(map[codex.RecordType]*TypeStats, len(c.entries)),
	}

	for key, e := range c.entries {
		ts := &TypeStats{
			Records:    len(e.records),
			LoadedAt:   e.loadedAt,
			AgeSeconds: now.Sub(e.loadedAt).Seconds(),
		}
		if info, ok := c.access[key]; ok {
			ts.LastAccessedAt = info.lastAccessedAt
			ts.AccessCount = info.accessCount
		}
		stats.PerType[key] = ts
	}
	return stats
}
