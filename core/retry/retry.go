package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy controls the retry behaviour of Fetch.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential backoff delay.
	MaxDelay time.Duration
}

// DefaultPolicy returns the standard policy: 3 retries, 1s base delay,
// 5s delay cap.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   5 * time.Second,
	}
}

// ExhaustedError is returned when every attempt failed. It wraps the last
// underlying error.
type ExhaustedError struct {
	Key      string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("fetch %q failed after %d attempts: %v", e.Key, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Fetch executes fn with bounded exponential-backoff retry. The key is used
// only for error reporting. Attempts run 0..MaxRetries inclusive; between
// failed attempts Fetch sleeps min(BaseDelay * 2^attempt, MaxDelay), honoring
// context cancellation during the wait.
func Fetch[T any](ctx context.Context, key string, policy Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := policy.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// No sleep after the final attempt.
		if attempt == attempts-1 {
			break
		}

		delay := policy.BaseDelay << attempt
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("fetch %q cancelled during backoff: %w", key, ctx.Err())
		case <-timer.C:
		}
	}

	return zero, &ExhaustedError{Key: key, Attempts: attempts, Err: lastErr}
}
