// Package retry executes network operations with exponential backoff.
//
// [Do] is the single entry point. Only network-class failures are retried;
// anything else propagates immediately, and the error from the final attempt
// is returned unmodified so callers can inspect the real cause.
package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"time"
)

// Config holds the tuning parameters for [Do]. Zero values are replaced with
// the defaults documented per field.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first one.
	// Default: 3.
	MaxAttempts int

	// BaseDelay is the wait before the first retry. The wait after failed
	// attempt k (0-indexed) is BaseDelay * 2^k. Default: 1s.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff. Default: 30s.
	MaxDelay time.Duration

	// Retryable reports whether an error should trigger another attempt.
	// Default: [IsNetworkError].
	Retryable func(error) bool
}

func applyDefaults(cfg *Config) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Retryable == nil {
		cfg.Retryable = IsNetworkError
	}
}

// backoffFor returns the delay after failed attempt k (0-indexed):
// min(BaseDelay * 2^k, MaxDelay).
func backoffFor(cfg Config, attempt int) time.Duration {
	delay := cfg.BaseDelay << uint(attempt)
	if delay > cfg.MaxDelay || delay <= 0 {
		return cfg.MaxDelay
	}
	return delay
}

// IsNetworkError reports whether err is a transient network-class failure:
// a net/url transport error, a net.Error (connection failures and timeouts),
// a truncated body, or an expired deadline. HTTP status and parse errors are
// plain errors and are never classified as retryable.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Do runs op up to cfg.MaxAttempts times. Success on any attempt returns
// immediately. A non-retryable error propagates as-is without further
// attempts, and so does the error of the final attempt. Between attempts Do
// honours ctx cancellation and returns ctx.Err() rather than sleeping on.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	applyDefaults(&cfg)

	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !cfg.Retryable(err) || attempt == cfg.MaxAttempts-1 {
			return zero, lastErr
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoffFor(cfg, attempt)):
		}
	}

	return zero, lastErr
}
