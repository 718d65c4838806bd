package cache

import (
	"strings"
	"time"

	"codex-manager/core/codex"
)

// Eviction strategy names accepted by Config.Eviction.
const (
	EvictionLRU = "lru"
	EvictionTTL = "ttl"
)

// Config holds configuration for the data cache.
type Config struct {
	// MaxEntryAgeSeconds is how long a loaded entry stays valid.
	MaxEntryAgeSeconds int `mapstructure:"max_entry_age_seconds" default:"300"`
	// MaxEntries bounds the number of cached record types.
	MaxEntries int `mapstructure:"max_entries" default:"100"`
	// Eviction selects the eviction strategy (lru, ttl). Unknown values
	// fall back to ttl-oldest.
	Eviction string `mapstructure:"eviction" default:"lru"`
	// MaintenanceIntervalSeconds drives the background maintenance loop.
	// Zero disables the loop; maintenance can still be run manually.
	MaintenanceIntervalSeconds int `mapstructure:"maintenance_interval_seconds" default:"60"`
	// PreloadTypes is a comma-separated list of record types loaded by
	// WarmCache before the first read.
	PreloadTypes string `mapstructure:"preload_types" default:"ancestries,classes,spells,perks,gear"`
}

// MaxEntryAge returns the entry TTL as a duration.
func (c Config) MaxEntryAge() time.Duration {
	return time.Duration(c.MaxEntryAgeSeconds) * time.Second
}

// MaintenanceInterval returns the maintenance loop interval as a duration.
func (c Config) MaintenanceInterval() time.Duration {
	return time.Duration(c.MaintenanceIntervalSeconds) * time.Second
}

// Preload parses PreloadTypes, silently skipping unknown names.
func (c Config) Preload() []codex.RecordType {
	var types []codex.RecordType
	for _, name := range strings.Split(c.PreloadTypes, ",") {
		rt := codex.RecordType(strings.TrimSpace(name))
		if rt.Valid() {
			types = append(types, rt)
		}
	}
	return types
}
