package source

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"codex-manager/core/codex"

	"go.uber.org/zap"
)

var (
	// ErrAllSourcesFailed is returned when every eligible source failed to
	// read for a record type. Partial failures never raise it.
	ErrAllSourcesFailed = errors.New("all sources failed")

	// ErrLoadTimeout is returned when the per-load deadline expired before
	// any source produced records.
	ErrLoadTimeout = errors.New("load timed out")
)

// Reader produces the normalized records for one record type by scanning all
// eligible sources concurrently.
type Reader struct {
	sources    []Source
	normalizer *codex.Normalizer
	logger     *zap.Logger
	timeout    time.Duration
}

// NewReader creates a reader over the given sources. A non-positive timeout
// falls back to 30 seconds.
func NewReader(sources []Source, normalizer *codex.Normalizer, logger *zap.Logger, timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Reader{
		sources:    sources,
		normalizer: normalizer,
		logger:     logger,
		timeout:    timeout,
	}
}

// Sources returns the registered sources in enumeration order.
func (r *Reader) Sources() []Source {
	return r.sources
}

// LoadRecordType reads every eligible source, filters records down to the
// requested type, and normalizes them. A single failing source contributes
// zero records and a warning; the operation only errors when the record type
// is unknown or every eligible source failed. Order is stable: sources in
// enumeration order, records in their original order within each source.
func (r *Reader) LoadRecordType(ctx context.Context, policy InclusionPolicy, recordType codex.RecordType) ([]codex.NormalizedRecord, error) {
	if !recordType.Valid() {
		return nil, fmt.Errorf("%w: %q", codex.ErrUnknownRecordType, recordType)
	}

	var eligible []Source
	for _, src := range r.sources {
		if policy.Allows(src.ID()) {
			eligible = append(eligible, src)
		}
	}
	// "Nothing selected" is a deliberate state, not a failure.
	if len(eligible) == 0 {
		return []codex.NormalizedRecord{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Fan out one read per source; result slots keep enumeration order.
	rawSets := make([][]codex.RawRecord, len(eligible))
	readErrs := make([]error, len(eligible))

	var wg sync.WaitGroup
	for i, src := range eligible {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			rawSets[i], readErrs[i] = src.ReadAll(ctx)
		}(i, src)
	}
	wg.Wait()

	records := []codex.NormalizedRecord{}
	failed := 0
	var failures []error
	for i, src := range eligible {
		if readErrs[i] != nil {
			failed++
			failures = append(failures, fmt.Errorf("source %s: %w", src.ID(), readErrs[i]))
			r.logger.Warn("Source read failed, continuing without it",
				zap.String("source_id", src.ID()),
				zap.String("category", src.Category()),
				zap.String("record_type", string(recordType)),
				zap.Error(readErrs[i]),
			)
			continue
		}
		for idx := range rawSets[i] {
			raw := &rawSets[i][idx]
			if !recordType.Matches(raw) {
				continue
			}
			records = append(records, r.normalizer.Normalize(recordType, raw, src.ID()))
		}
	}

	if failed == len(eligible) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrLoadTimeout, recordType, r.timeout)
		}
		return nil, fmt.Errorf("%w for %s: %w", ErrAllSourcesFailed, recordType, errors.Join(failures...))
	}

	return records, nil
}
