package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"codex-manager/core/codex"
	"codex-manager/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader produces the full normalized record set for one record type.
// core/source.Reader satisfies this once a caller binds an inclusion policy.
type Loader interface {
	LoadRecordType(ctx context.Context, recordType codex.RecordType) ([]codex.NormalizedRecord, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, recordType codex.RecordType) ([]codex.NormalizedRecord, error)

// LoadRecordType implements Loader.
func (f LoaderFunc) LoadRecordType(ctx context.Context, recordType codex.RecordType) ([]codex.NormalizedRecord, error) {
	return f(ctx, recordType)
}

// entry is a cached record collection for one record type. Entries are
// replaced whole on refresh, never merged or mutated.
type entry struct {
	records  []codex.NormalizedRecord
	loadedAt time.Time
}

// accessInfo is the eviction policy's recency signal. Its lifecycle is
// independent from the entry: updated on every read, cleared with eviction.
type accessInfo struct {
	lastAccessedAt time.Time
	accessCount    int64
}

// DataCache coordinates loading, reading, and evicting codex data.
type DataCache struct {
	loader  Loader
	logger  *zap.Logger
	preload []codex.RecordType

	maxEntryAge time.Duration
	maxEntries  int
	eviction    string

	mu      sync.RWMutex
	entries map[codex.RecordType]*entry
	access  map[codex.RecordType]*accessInfo
	hits    int64
	misses  int64
	evicted int64

	// inflight counts loads currently running, for diagnostics. Updated
	// with atomics because loads run outside mu.
	inflight int64

	flight singleflight.Group

	// maintenance loop coordination
	loopMu sync.Mutex
	stop   chan struct{}
	done   chan struct{}

	now func() time.Time
}

// New creates a data cache over the given loader. Unknown eviction strategy
// names fall back to ttl-oldest.
func New(loader Loader, cfg Config, logger *zap.Logger) *DataCache {
	eviction := cfg.Eviction
	if eviction != EvictionLRU && eviction != EvictionTTL {
		eviction = EvictionTTL
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 100
	}
	maxEntryAge := cfg.MaxEntryAge()
	if maxEntryAge <= 0 {
		maxEntryAge = 5 * time.Minute
	}

	return &DataCache{
		loader:      loader,
		logger:      logger,
		preload:     cfg.Preload(),
		maxEntryAge: maxEntryAge,
		maxEntries:  maxEntries,
		eviction:    eviction,
		entries:     make(map[codex.RecordType]*entry),
		access:      make(map[codex.RecordType]*accessInfo),
		now:         time.Now,
	}
}

// EnsureDataLoaded guarantees every requested record type is present and
// fresh, loading missing or expired types concurrently. Concurrent calls for
// the same type join one in-flight load. Per-type failures are isolated: the
// other types in the call still land in cache, and the joined error reports
// every failure.
func (c *DataCache) EnsureDataLoaded(ctx context.Context, keys []codex.RecordType) error {
	missing := c.missingKeys(keys)
	if len(missing) == 0 {
		return nil
	}

	errs := make([]error, len(missing))
	var wg sync.WaitGroup
	for i, key := range missing {
		wg.Add(1)
		go func(i int, key codex.RecordType) {
			defer wg.Done()
			errs[i] = c.loadKey(ctx, key)
		}(i, key)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// missingKeys returns the deduplicated subset of keys that are absent or
// expired.
func (c *DataCache) missingKeys(keys []codex.RecordType) []codex.RecordType {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[codex.RecordType]bool, len(keys))
	var missing []codex.RecordType
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		if !c.validLocked(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// validLocked reports whether the key is present and fresh. Callers hold mu.
func (c *DataCache) validLocked(key codex.RecordType) bool {
	e, ok := c.entries[key]
	return ok && c.now().Sub(e.loadedAt) < c.maxEntryAge
}

// loadKey runs (or joins) the single in-flight load for one record type.
func (c *DataCache) loadKey(ctx context.Context, key codex.RecordType) error {
	// The load must survive the initiating caller's cancellation: other
	// callers may be joined to it. The reader applies its own deadline.
	loadCtx := context.WithoutCancel(ctx)

	_, err, _ := c.flight.Do(string(key), func() (any, error) {
		// Double-check after winning the flight; a joined caller may
		// have been queued behind a load that already finished.
		c.mu.RLock()
		valid := c.validLocked(key)
		c.mu.RUnlock()
		if valid {
			return nil, nil
		}

		atomic.AddInt64(&c.inflight, 1)
		records, err := c.loader.LoadRecordType(loadCtx, key)
		atomic.AddInt64(&c.inflight, -1)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", key, err)
		}
		c.store(key, records)
		return nil, nil
	})
	return err
}

// store inserts a fresh entry, evicting first when at capacity. Refreshing
// an existing key never triggers eviction.
func (c *DataCache) store(key codex.RecordType, records []codex.NormalizedRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.maxEntries {
			if _, ok := c.evictOneLocked(); !ok {
				break
			}
		}
	}
	c.entries[key] = &entry{records: records, loadedAt: c.now()}
}

// GetAllItems returns the cached records for a record type. It never loads:
// a type that was never loaded (or was evicted) reads as an empty slice.
func (c *DataCache) GetAllItems(recordType codex.RecordType) []codex.NormalizedRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.touchLocked(recordType)
	e, ok := c.entries[recordType]
	if !ok {
		c.misses++
		return []codex.NormalizedRecord{}
	}
	c.hits++

	out := make([]codex.NormalizedRecord, len(e.records))
	copy(out, e.records)
	return out
}

// GetFilteredItems returns the cached records matching every filter.
// A filter whose value is a list matches records whose attribute equals any
// element (set membership); a scalar filter matches on loose equality. A
// record attribute that is itself a list matches when it contains the
// wanted value.
func (c *DataCache) GetFilteredItems(recordType codex.RecordType, filters map[string]any) []codex.NormalizedRecord {
	records := c.GetAllItems(recordType)
	if len(filters) == 0 {
		return records
	}

	out := []codex.NormalizedRecord{}
	for _, rec := range records {
		if matchesFilters(&rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

// GetItemByID returns the cached record with the given id, or nil. Like the
// other accessors it never triggers a load.
func (c *DataCache) GetItemByID(recordType codex.RecordType, id string) *codex.NormalizedRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.touchLocked(recordType)
	e, ok := c.entries[recordType]
	if !ok {
		c.misses++
		return nil
	}
	for i := range e.records {
		if e.records[i].ID == id {
			c.hits++
			rec := e.records[i]
			return &rec
		}
	}
	c.misses++
	return nil
}

// BatchLoadData ensures and reads each key independently. A key whose load
// failed maps to nil; other keys are unaffected.
func (c *DataCache) BatchLoadData(ctx context.Context, keys []codex.RecordType) map[codex.RecordType][]codex.NormalizedRecord {
	result := make(map[codex.RecordType][]codex.NormalizedRecord, len(keys))
	for _, key := range keys {
		if err := c.EnsureDataLoaded(ctx, []codex.RecordType{key}); err != nil {
			c.logger.Warn("Batch load failed for record type",
				zap.String("record_type", string(key)),
				zap.Error(err),
			)
			result[key] = nil
			continue
		}
		result[key] = c.GetAllItems(key)
	}
	return result
}

// WarmCache pre-populates the configured preload types.
func (c *DataCache) WarmCache(ctx context.Context) error {
	return c.EnsureDataLoaded(ctx, c.preload)
}

// PreloadAllData pre-populates every known record type.
func (c *DataCache) PreloadAllData(ctx context.Context) error {
	return c.EnsureDataLoaded(ctx, codex.AllRecordTypes())
}

// Clear removes every entry and all access metadata.
func (c *DataCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		c.flight.Forget(string(key))
	}
	c.entries = make(map[codex.RecordType]*entry)
	c.access = make(map[codex.RecordType]*accessInfo)
}

// ClearType removes one record type's entry and access metadata.
func (c *DataCache) ClearType(recordType codex.RecordType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, recordType)
	delete(c.access, recordType)
	c.flight.Forget(string(recordType))
}

// touchLocked updates the access metadata feeding the LRU signal.
// Callers hold mu.
func (c *DataCache) touchLocked(recordType codex.RecordType) {
	info, ok := c.access[recordType]
	if !ok {
		info = &accessInfo{}
		c.access[recordType] = info
	}
	info.lastAccessedAt = c.now()
	info.accessCount++
}

// evictOneLocked removes the strategy's victim: entry, access metadata, and
// any stale in-flight registration go together. Callers hold mu.
func (c *DataCache) evictOneLocked() (codex.RecordType, bool) {
	victim, ok := c.victimLocked()
	if !ok {
		return "", false
	}

	delete(c.entries, victim)
	delete(c.access, victim)
	c.flight.Forget(string(victim))
	c.evicted++

	c.logger.Debug("Evicted cached record type",
		zap.String("record_type", string(victim)),
		zap.String("strategy", c.eviction),
	)
	return victim, true
}

// victimLocked picks the eviction victim. LRU uses the oldest read access,
// treating a never-read type as infinitely old; TTL uses the oldest
// insertion. Callers hold mu.
func (c *DataCache) victimLocked() (codex.RecordType, bool) {
	var victim codex.RecordType
	found := false

	if c.eviction == EvictionLRU {
		var oldest time.Time
		for key := range c.entries {
			info, accessed := c.access[key]
			if !accessed {
				return key, true
			}
			if !found || info.lastAccessedAt.Before(oldest) {
				victim, oldest, found = key, info.lastAccessedAt, true
			}
		}
		return victim, found
	}

	var oldest time.Time
	for key, e := range c.entries {
		if !found || e.loadedAt.Before(oldest) {
			victim, oldest, found = key, e.loadedAt, true
		}
	}
	return victim, found
}

// matchesFilters applies every filter, AND-combined.
func matchesFilters(rec *codex.NormalizedRecord, filters map[string]any) bool {
	for key, want := range filters {
		attr, ok := rec.Attribute(key)
		if !ok {
			return false
		}
		if !matchValue(attr, want) {
			return false
		}
	}
	return true
}

// matchValue compares one record attribute against one filter value.
func matchValue(attr, want any) bool {
	switch wants := want.(type) {
	case []string:
		for _, w := range wants {
			if matchValue(attr, w) {
				return true
			}
		}
		return false
	case []any:
		for _, w := range wants {
			if matchValue(attr, w) {
				return true
			}
		}
		return false
	}

	// A list-valued attribute matches when it contains the wanted value.
	if attrs, ok := attr.([]string); ok {
		wantStr := utils.ToString(want)
		for _, a := range attrs {
			if a == wantStr {
				return true
			}
		}
		return false
	}

	// Loose scalar equality: query-string filters arrive as strings even
	// for numeric attributes.
	return utils.ToString(attr) == utils.ToString(want)
}
