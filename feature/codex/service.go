package codex

import (
	"context"

	"codex-manager/core/cache"
	"codex-manager/core/codex"

	"go.uber.org/zap"
)

// Service handles codex record operations on top of the data cache.
type Service struct {
	cache  *cache.DataCache
	logger *zap.Logger
}

// NewService creates a new codex service.
func NewService(c *cache.DataCache, logger *zap.Logger) *Service {
	return &Service{cache: c, logger: logger}
}

// Ensure makes sure the given record type is loaded and fresh.
func (s *Service) Ensure(ctx context.Context, recordType codex.RecordType) error {
	return s.cache.EnsureDataLoaded(ctx, []codex.RecordType{recordType})
}

// List returns every cached record of the given type, loading it first.
func (s *Service) List(ctx context.Context, recordType codex.RecordType) ([]codex.NormalizedRecord, error) {
	if err := s.Ensure(ctx, recordType); err != nil {
		return nil, err
	}
	return s.cache.GetAllItems(recordType), nil
}

// ListFiltered returns the records of a type matching every filter.
func (s *Service) ListFiltered(ctx context.Context, recordType codex.RecordType, filters map[string]any) ([]codex.NormalizedRecord, error) {
	if err := s.Ensure(ctx, recordType); err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return s.cache.GetAllItems(recordType), nil
	}
	return s.cache.GetFilteredItems(recordType, filters), nil
}

// Get returns one record by ID, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, recordType codex.RecordType, id string) (*codex.NormalizedRecord, error) {
	if err := s.Ensure(ctx, recordType); err != nil {
		return nil, err
	}
	return s.cache.GetItemByID(recordType, id), nil
}

// GetAncestry returns one ancestry record by ID.
func (s *Service) GetAncestry(ctx context.Context, id string) (*codex.NormalizedRecord, error) {
	return s.Get(ctx, codex.TypeAncestries, id)
}

// GetClass returns one class record by ID.
func (s *Service) GetClass(ctx context.Context, id string) (*codex.NormalizedRecord, error) {
	return s.Get(ctx, codex.TypeClasses, id)
}

// GetSpell returns one spell record by ID.
func (s *Service) GetSpell(ctx context.Context, id string) (*codex.NormalizedRecord, error) {
	return s.Get(ctx, codex.TypeSpells, id)
}

// GetPerk returns one perk record by ID.
func (s *Service) GetPerk(ctx context.Context, id string) (*codex.NormalizedRecord, error) {
	return s.Get(ctx, codex.TypePerks, id)
}

// GetGear returns one gear record by ID.
func (s *Service) GetGear(ctx context.Context, id string) (*codex.NormalizedRecord, error) {
	return s.Get(ctx, codex.TypeGear, id)
}

// GetStartingPack returns one starting pack record by ID.
func (s *Service) GetStartingPack(ctx context.Context, id string) (*codex.NormalizedRecord, error) {
	return s.Get(ctx, codex.TypeStartingPacks, id)
}

// Warm loads every configured preload type.
func (s *Service) Warm(ctx context.Context) error {
	return s.cache.WarmCache(ctx)
}

// Stats returns a diagnostic snapshot of the cache.
func (s *Service) Stats() cache.Stats {
	return s.cache.Stats()
}

// Maintain runs one maintenance pass and reports what was removed.
func (s *Service) Maintain() cache.MaintenanceReport {
	return s.cache.PerformMaintenance()
}

// Clear drops every cached entry.
func (s *Service) Clear() {
	s.cache.Clear()
}

// ClearType drops one cached record type.
func (s *Service) ClearType(recordType codex.RecordType) {
	s.cache.ClearType(recordType)
}
