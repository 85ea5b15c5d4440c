package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
	"time"
)

// fakeNetError implements net.Error for classification tests.
type fakeNetError struct{ msg string }

func (e *fakeNetError) Error() string   { return e.msg }
func (e *fakeNetError) Timeout() bool   { return true }
func (e *fakeNetError) Temporary() bool { return true }

// TestDoSucceedsFirstAttempt verifies no retries happen when the op succeeds.
func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != "ok" {
		t.Errorf("Do = %q, want ok", got)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

// TestDoRetriesNetworkErrors verifies a transient failure is retried until success.
func TestDoRetriesNetworkErrors(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &fakeNetError{msg: "connection reset"}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("Do = %d after %d calls, want 42 after 3", got, calls)
	}
}

// TestDoFinalErrorUnmodified verifies the last attempt's error propagates as-is.
func TestDoFinalErrorUnmodified(t *testing.T) {
	lastErr := &fakeNetError{msg: "still down"}
	calls := 0
	_, err := Do(context.Background(), Config{MaxAttempts: 2, BaseDelay: time.Millisecond}, func(ctx context.Context) (string, error) {
		calls++
		return "", lastErr
	})
	if !errors.Is(err, lastErr) && err != error(lastErr) {
		t.Errorf("Do error = %v, want the final attempt's error unmodified", err)
	}
	if calls != 2 {
		t.Errorf("op called %d times, want 2", calls)
	}
}

// TestDoNonRetryableImmediate verifies non-network errors are never retried.
func TestDoNonRetryableImmediate(t *testing.T) {
	parseErr := fmt.Errorf("unexpected status code: 500")
	calls := 0
	_, err := Do(context.Background(), Config{MaxAttempts: 5, BaseDelay: time.Millisecond}, func(ctx context.Context) (string, error) {
		calls++
		return "", parseErr
	})
	if !errors.Is(err, parseErr) {
		t.Errorf("Do error = %v, want %v", err, parseErr)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1 (no retry on non-network error)", calls)
	}
}

// TestDoContextCanceledBetweenAttempts verifies cancellation short-circuits the backoff sleep.
func TestDoContextCanceledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Config{MaxAttempts: 3, BaseDelay: time.Hour}, func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", &fakeNetError{msg: "timeout"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

// TestBackoffDoubles verifies the exponential schedule base*2^k with a cap.
func TestBackoffDoubles(t *testing.T) {
	cfg := Config{BaseDelay: 100 * time.Millisecond, MaxDelay: 350 * time.Millisecond}
	applyDefaults(&cfg)

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 350 * time.Millisecond}, // capped, would be 400ms
		{3, 350 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := backoffFor(cfg, tc.attempt); got != tc.want {
			t.Errorf("backoffFor(attempt=%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

// TestIsNetworkError verifies the retryable error classification.
func TestIsNetworkError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"net.Error", &fakeNetError{msg: "timeout"}, true},
		{"url.Error", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("refused")}, true},
		{"wrapped net.Error", fmt.Errorf("fetching: %w", &net.OpError{Op: "dial", Err: errors.New("refused")}), true},
		{"deadline", context.DeadlineExceeded, true},
		{"plain error", errors.New("bad status 500"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNetworkError(tc.err); got != tc.want {
				t.Errorf("IsNetworkError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
