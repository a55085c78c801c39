package ocr

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient extraction failures with exponential
// backoff. Rate limits wait out the provider's RetryAfter hint, a
// malformed response gets exactly one re-ask, and a dead context ends
// the call immediately.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry middleware.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Extract(ctx context.Context, req Request) (*Extraction, error) {
	wait := r.config.InitialWait
	invalidSeen := false

	for attempt := 1; ; attempt++ {
		out, err := r.inner.Extract(ctx, req)
		if err == nil {
			return out, nil
		}
		if attempt >= r.config.MaxAttempts || !retryable(err, &invalidSeen) {
			return nil, err
		}

		delay := withJitter(wait)
		var rl *ErrRateLimit
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			delay = rl.RetryAfter
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		wait = time.Duration(float64(wait) * r.config.Multiplier)
		if wait > r.config.MaxWait {
			wait = r.config.MaxWait
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// retryable classifies this package's error types: ErrRateLimit,
// ErrProviderUnavailable and plain transport errors are transient,
// ErrInvalidResponse is worth one more attempt, context errors are
// final.
func retryable(err error, invalidSeen *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		first := !*invalidSeen
		*invalidSeen = true
		return first
	}

	return true
}

// withJitter spreads a wait ±20% so concurrent sessions don't retry in
// lockstep.
func withJitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
}
