// ABOUTME: Exponential backoff with additive jitter for retried remote calls
// ABOUTME: Delay before attempt i is initial * 2^(i-1) plus up to jitterBound of noise
package retry

import (
	"math/rand/v2"
	"time"
)

// maxShift keeps the doubling inside int64 nanoseconds
const maxShift = 30

// Backoff returns the delay to wait before the given attempt (0-indexed).
// Attempt 0 runs immediately; attempt i >= 1 waits initialDelay * 2^(i-1)
// plus jitter drawn uniformly from [0, jitterBound).
func Backoff(initialDelay time.Duration, attempt int, jitterBound time.Duration) time.Duration {
	return backoff(initialDelay, attempt, jitterBound, 0, rand.Int64N)
}

func backoff(initialDelay time.Duration, attempt int, jitterBound, maxDelay time.Duration, int64n func(int64) int64) time.Duration {
	if attempt <= 0 || initialDelay < 0 {
		return 0
	}

	shift := attempt - 1
	if shift > maxShift {
		shift = maxShift
	}

	delay := initialDelay * time.Duration(1<<uint(shift))
	// Overflow on very large initial delays
	if initialDelay > 0 && delay/time.Duration(1<<uint(shift)) != initialDelay {
		delay = time.Duration(1<<63 - 1)
	}
	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}

	if jitterBound > 0 {
		jitter := time.Duration(int64n(int64(jitterBound)))
		if delay > time.Duration(1<<63-1)-jitter {
			return time.Duration(1<<63 - 1)
		}
		delay += jitter
	}
	return delay
}
