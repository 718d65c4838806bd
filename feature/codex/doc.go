// Package codex serves the character-builder reference records.
//
// It exposes the cached record catalog over HTTP: listing by record type,
// filtered lookups, single-record fetches, cache warming and cache
// administration.
//
// # Components
//
//   - Service: Wraps the record cache with typed accessors and admin operations.
//   - Handler: Exposes HTTP endpoints for records, stats and cache control.
//   - Loader: Registers the feature with the application.
//
// # HTTP Endpoints
//
//   - GET    /codex/types        : List the known record types.
//   - GET    /codex/stats        : Cache diagnostics snapshot.
//   - POST   /codex/warm         : Load every configured preload type.
//   - POST   /codex/maintenance  : Run one maintenance pass immediately.
//   - DELETE /codex/cache        : Drop every cached entry.
//   - DELETE /codex/cache/:type  : Drop one cached record type.
//   - GET    /codex/:type        : List records of a type, with query filters.
//   - GET    /codex/:type/:id    : Fetch one record by ID.
package codex
