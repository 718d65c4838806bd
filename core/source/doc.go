// Package source discovers and reads codex content from independent content
// sources and turns it into normalized records.
//
// A Source is any repository of raw records: the built-in compendium shipped
// with the binary, a relational database table, or a JSON document in object
// storage. Sources can be slow or unavailable; the Reader isolates each
// source's failure so one broken source never fails a whole load.
//
// # Inclusion Policy
//
// Callers control which sources participate per load. The policy has three
// states: use everything, an explicit allow-list, or an explicit empty
// allow-list meaning "nothing selected"; the last one yields an empty
// result without error.
//
// # Reader
//
// Reader.LoadRecordType fans out over all eligible sources concurrently,
// filters each source's records by the record type's kind, and normalizes
// them. Result order is stable: sources in enumeration order, records in
// their original order within a source. A per-load deadline bounds the whole
// fan-out; it only surfaces as an error when every source failed.
package source
