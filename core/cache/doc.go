// Package cache provides the bounded in-memory cache that sits between the
// content sources and every consumer of codex data.
//
// The cache is the stateful coordinator of the pipeline. It keeps one entry
// per record type, deduplicates concurrent loads for the same type so an
// expensive fetch+normalize runs at most once no matter how many callers ask
// for it, tracks per-type access recency for eviction, and expires stale
// entries either lazily (on insertion pressure) or via the optional
// background maintenance loop.
//
// # Concurrency Contract
//
// Many callers hit one cache instance at once. Read accessors (GetAllItems,
// GetFilteredItems, GetItemByID) never block on a load and never return an
// error; a type that was never loaded reads as empty. EnsureDataLoaded is
// the only path that loads; concurrent calls for the same missing type join
// a single in-flight load (singleflight), and a load, once started, runs to
// completion even if the initiating caller goes away, because other callers
// may be joined to it.
//
// # Eviction
//
// Two strategies, selected by configuration: "lru" (default) evicts the type
// with the oldest read access, treating never-read types as infinitely old;
// "ttl" evicts the oldest insertion. Any other value falls back to "ttl".
// Eviction only runs on insertion over capacity and during maintenance,
// never on a plain read.
package cache
