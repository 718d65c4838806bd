package source

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	"codex-manager/core/codex"
)

//go:embed data/*.json
var builtinFS embed.FS

// BuiltinSource serves the starter compendium embedded in the binary. It is
// always available and never fails at runtime once constructed.
type BuiltinSource struct {
	records []codex.RawRecord
}

// NewBuiltinSource decodes the embedded compendium documents. File order is
// made deterministic by sorting names so record order is stable across runs.
func NewBuiltinSource() (*BuiltinSource, error) {
	entries, err := builtinFS.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded compendium: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var records []codex.RawRecord
	for _, name := range names {
		data, err := builtinFS.ReadFile("data/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded document %s: %w", name, err)
		}
		var batch []codex.RawRecord
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("failed to decode embedded document %s: %w", name, err)
		}
		records = append(records, batch...)
	}

	return &BuiltinSource{records: records}, nil
}

// ID returns the source identifier.
func (s *BuiltinSource) ID() string {
	return "builtin"
}

// Category returns the diagnostics group.
func (s *BuiltinSource) Category() string {
	return CategoryBuiltin
}

// ReadAll returns the embedded record set.
func (s *BuiltinSource) ReadAll(_ context.Context) ([]codex.RawRecord, error) {
	return s.records, nil
}
