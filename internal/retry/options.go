// ABOUTME: Functional options for the retry wrapper
// ABOUTME: Injects retry ceiling, delays, credential selector, clock, and randomness
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Option configures a call to Do
type Option func(*config)

type config struct {
	retries           int
	initialDelay      time.Duration
	jitter            time.Duration
	maxDelay          time.Duration
	selector          CredentialSelector
	retryAfterRefresh bool
	observer          func(Attempt)
	sleep             func(ctx context.Context, d time.Duration) error
	int64n            func(n int64) int64
}

func newConfig(opts []Option) *config {
	cfg := &config{
		retries:      DefaultRetries,
		initialDelay: DefaultInitialDelay,
		jitter:       DefaultJitter,
		sleep:        sleepContext,
		int64n:       rand.Int64N,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.retries < 0 {
		cfg.retries = 0
	}
	if cfg.initialDelay < 0 {
		cfg.initialDelay = 0
	}
	if cfg.jitter < 0 {
		cfg.jitter = 0
	}
	return cfg
}

func (c *config) observe(a Attempt) {
	if c.observer != nil {
		c.observer(a)
	}
}

// WithRetries sets how many retries follow the first attempt
func WithRetries(n int) Option {
	return func(c *config) { c.retries = n }
}

// WithInitialDelay sets the base delay before the first retry
func WithInitialDelay(d time.Duration) Option {
	return func(c *config) { c.initialDelay = d }
}

// WithJitter sets the upper bound (exclusive) of the random delay added to each backoff
func WithJitter(d time.Duration) Option {
	return func(c *config) { c.jitter = d }
}

// WithMaxDelay caps the exponential part of the backoff. Zero means uncapped.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) { c.maxDelay = d }
}

// WithCredentialSelector sets the capability invoked once per call on a credential-missing error
func WithCredentialSelector(s CredentialSelector) Option {
	return func(c *config) { c.selector = s }
}

// WithRetryAfterCredentialRefresh makes a credential-missing error retryable
// when the selector succeeded, even if the error has no transient signature
func WithRetryAfterCredentialRefresh(enabled bool) Option {
	return func(c *config) { c.retryAfterRefresh = enabled }
}

// WithObserver registers a hook called after every attempt
func WithObserver(fn func(Attempt)) Option {
	return func(c *config) { c.observer = fn }
}

// WithSleep replaces the context-aware timer used between attempts
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *config) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithRand replaces the jitter source; fn must return a value in [0, n)
func WithRand(fn func(n int64) int64) Option {
	return func(c *config) {
		if fn != nil {
			c.int64n = fn
		}
	}
}
