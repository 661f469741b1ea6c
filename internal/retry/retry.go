// ABOUTME: Resilient remote call wrapper with bounded retries and exponential backoff
// ABOUTME: Retries transient failures and refreshes credentials when the remote rejects the key
package retry

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultRetries allows up to four attempts in total
	DefaultRetries = 3
	// DefaultInitialDelay is the wait before the first retry
	DefaultInitialDelay = time.Second
	// DefaultJitter bounds the random delay added to each backoff
	DefaultJitter = time.Second
)

// CredentialSelector is the capability used to pick a new credential when the
// remote reports the current one missing or invalid
type CredentialSelector interface {
	HasSelectedCredential(ctx context.Context) (bool, error)
	SelectCredential(ctx context.Context) error
}

// Attempt describes one invocation of the wrapped operation
type Attempt struct {
	Index int           // 0 for the first call
	Delay time.Duration // backoff slept before this call
	Err   error         // nil on success
	Class Class         // classification of Err; Terminal on success
}

// Do runs op until it succeeds, returns a non-transient error, or the retry
// ceiling is reached. At most retries+1 calls are made. The error from the
// last attempt is returned unchanged.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	cfg := newConfig(opts)

	var zero T
	var lastErr error
	refreshed := false

	for attempt := 0; ; attempt++ {
		var delay time.Duration
		if attempt > 0 {
			delay = backoff(cfg.initialDelay, attempt, cfg.jitter, cfg.maxDelay, cfg.int64n)
			if err := cfg.sleep(ctx, delay); err != nil {
				return zero, fmt.Errorf("%w (retry aborted before attempt %d: %w)", lastErr, attempt+1, err)
			}
		}

		result, err := op(ctx)
		if err == nil {
			cfg.observe(Attempt{Index: attempt, Delay: delay})
			return result, nil
		}

		class := Classify(err)
		cfg.observe(Attempt{Index: attempt, Delay: delay, Err: err, Class: class})

		retryable := IsTransient(err)
		if class == CredentialMissing && !refreshed && cfg.selector != nil {
			refreshed = true
			// Selector failures are swallowed; the remote error is what the caller sees
			if selErr := cfg.selector.SelectCredential(ctx); selErr == nil && cfg.retryAfterRefresh {
				retryable = true
			}
		}

		if !retryable || attempt >= cfg.retries {
			return zero, err
		}
		lastErr = err
	}
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
