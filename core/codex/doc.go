// Package codex defines the canonical data model for character-building
// reference data and the normalizer that produces it.
//
// Content sources hand back heterogeneous raw records (different games,
// different authors, different schema generations). This package converts
// them into a single canonical shape so the rest of the application never
// has to care where a record came from.
//
// # Record Types
//
// Every record belongs to exactly one RecordType (ancestries, classes,
// spells, perks, gear, ancestry features, class features, starting packs).
// The RecordType is the primary cache key and selects the type-specific
// normalization step.
//
// # Normalization Contract
//
// Normalize never fails on a single record. Missing input fields get
// documented defaults, and a record of an unrecognized kind degrades to a
// base-fields-only record with a logged warning. The record is never lost,
// only degraded.
package codex
