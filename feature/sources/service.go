package sources

import (
	"context"
	"sync"
	"time"

	"codex-manager/core/source"

	"go.uber.org/zap"
)

// probeTimeout bounds one diagnostics probe across all sources.
const probeTimeout = 15 * time.Second

// SourceReport is the diagnostics result for one registered source.
type SourceReport struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Enabled   bool   `json:"enabled"`
	Reachable bool   `json:"reachable"`
	Records   int    `json:"records"`
	Error     string `json:"error,omitempty"`
}

// Service probes the registered content sources.
type Service struct {
	reader *source.Reader
	policy source.InclusionPolicy
	logger *zap.Logger
}

// NewService creates a new sources diagnostics service.
func NewService(reader *source.Reader, policy source.InclusionPolicy, logger *zap.Logger) *Service {
	return &Service{reader: reader, policy: policy, logger: logger}
}

// Probe reads every registered source concurrently and reports its status.
// Reports keep the reader's enumeration order.
func (s *Service) Probe(ctx context.Context) []SourceReport {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	srcs := s.reader.Sources()
	reports := make([]SourceReport, len(srcs))

	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()

			report := SourceReport{
				ID:       src.ID(),
				Category: src.Category(),
				Enabled:  s.policy.Allows(src.ID()),
			}
			records, err := src.ReadAll(ctx)
			if err != nil {
				report.Error = err.Error()
				s.logger.Warn("Source probe failed",
					zap.String("source", src.ID()),
					zap.Error(err))
			} else {
				report.Reachable = true
				report.Records = len(records)
			}
			reports[i] = report
		}(i, src)
	}
	wg.Wait()

	return reports
}
