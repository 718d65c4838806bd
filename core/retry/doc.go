// Package retry provides a small fetch-with-retry primitive with exponential
// backoff for reads whose underlying I/O is occasionally flaky.
//
// It is independent of the cache layer: a reusable building block for any
// single-target read (a named object in storage, a single database query),
// not a fan-out or eviction engine.
//
// # Backoff
//
// The delay before attempt n (0-indexed) is min(BaseDelay * 2^n, MaxDelay).
// Sleeps are context-aware; cancelling the context aborts the wait.
//
// # Usage
//
//	records, err := retry.Fetch(ctx, "codex/records.json", retry.DefaultPolicy(), func(ctx context.Context) ([]RawRecord, error) {
//	    return readObject(ctx)
//	})
//
// On exhaustion the returned error is an *ExhaustedError wrapping the last
// underlying cause, so errors.Is / errors.As still see the root failure.
package retry
