package source

import (
	"context"
	"strings"

	"codex-manager/core/codex"
)

// Source categories used for diagnostics grouping. They never change
// behaviour.
const (
	CategoryBuiltin  = "built-in"
	CategoryDatabase = "database"
	CategoryObject   = "object-storage"
)

// Source is an independent content repository holding zero or more raw
// records of any record type. Sources are read-only to this system.
type Source interface {
	// ID returns the stable identifier used by the inclusion policy.
	ID() string
	// Category returns the diagnostics group this source belongs to.
	Category() string
	// ReadAll reads the source's full record set.
	ReadAll(ctx context.Context) ([]codex.RawRecord, error)
}

// InclusionPolicy selects which sources participate in a load.
// UseAll=false with an empty EnabledSourceIDs means "nothing selected":
// loads yield empty results without error.
type InclusionPolicy struct {
	UseAll           bool
	EnabledSourceIDs []string
}

// Allows reports whether the source with the given id participates.
func (p InclusionPolicy) Allows(id string) bool {
	if p.UseAll {
		return true
	}
	for _, enabled := range p.EnabledSourceIDs {
		if enabled == id {
			return true
		}
	}
	return false
}

// Config holds configuration for content sources.
type Config struct {
	// UseAll enables every registered source. When false, only sources
	// listed in Enabled participate; an empty list loads nothing.
	UseAll bool `mapstructure:"use_all" default:"true"`
	// Enabled is a comma-separated allow-list of source IDs, consulted
	// only when UseAll is false.
	Enabled string `mapstructure:"enabled" default:""`
	// LoadTimeoutSeconds bounds one record-type load across all sources.
	LoadTimeoutSeconds int `mapstructure:"load_timeout_seconds" default:"30"`
	// DatabaseEnabled registers the database source when a database
	// connection is available.
	DatabaseEnabled bool `mapstructure:"database_enabled" default:"true"`
	// ObjectEnabled registers the object-storage source when a storage
	// client is available.
	ObjectEnabled bool `mapstructure:"object_enabled" default:"true"`
	// ObjectName is the object holding raw records in the bucket.
	ObjectName string `mapstructure:"object_name" default:"codex/records.json"`
}

// Policy builds the inclusion policy from configuration.
func (c Config) Policy() InclusionPolicy {
	policy := InclusionPolicy{UseAll: c.UseAll}
	if c.Enabled != "" {
		for _, id := range strings.Split(c.Enabled, ",") {
			if id = strings.TrimSpace(id); id != "" {
				policy.EnabledSourceIDs = append(policy.EnabledSourceIDs, id)
			}
		}
	}
	if policy.EnabledSourceIDs == nil {
		policy.EnabledSourceIDs = []string{}
	}
	return policy
}
