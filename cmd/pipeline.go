package cmd

import (
	"context"
	"time"

	"codex-manager/core/cache"
	"codex-manager/core/codex"
	"codex-manager/core/config"
	"codex-manager/core/database"
	"codex-manager/core/retry"
	"codex-manager/core/source"
	"codex-manager/core/storage"

	"go.uber.org/zap"
)

// buildSources assembles the registered content sources from the
// configuration. The built-in compendium always participates; the database
// and object-storage sources are added only when enabled and reachable.
// Failing optional backends degrade to a smaller source list.
func buildSources(cfg *config.Config, logg *zap.Logger) ([]source.Source, error) {
	builtin, err := source.NewBuiltinSource()
	if err != nil {
		return nil, err
	}
	srcs := []source.Source{builtin}

	if cfg.Sources.DatabaseEnabled {
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			srcs = append(srcs, source.NewDatabaseSource(db))
			logg.Info("Registered database source")
		}
	}

	if cfg.Sources.ObjectEnabled {
		if store, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage client creation failed", zap.Error(err))
		} else {
			srcs = append(srcs, source.NewObjectSource(store, cfg.Storage.Bucket, cfg.Sources.ObjectName, retry.DefaultPolicy()))
			logg.Info("Registered object-storage source")
		}
	}

	return srcs, nil
}

// buildCache wires the source reader and the data cache together under the
// configured inclusion policy.
func buildCache(cfg *config.Config, srcs []source.Source, logg *zap.Logger) (*source.Reader, *cache.DataCache) {
	normalizer := codex.NewNormalizer(logg)
	timeout := time.Duration(cfg.Sources.LoadTimeoutSeconds) * time.Second
	reader := source.NewReader(srcs, normalizer, logg, timeout)

	policy := cfg.Sources.Policy()
	loader := cache.LoaderFunc(func(ctx context.Context, recordType codex.RecordType) ([]codex.NormalizedRecord, error) {
		return reader.LoadRecordType(ctx, policy, recordType)
	})

	return reader, cache.New(loader, cfg.Cache, logg)
}
