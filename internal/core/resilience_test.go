package core

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"testing"
	"time"
)

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, MaxDelay: 5 * time.Second, BackoffMultiplier: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
		{10, 5 * time.Second},
	}

	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:        retries,
		BaseDelay:         time.Millisecond,
		MaxDelay:          2 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient errors", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, fastPolicy(3), nil, "test", func(context.Context) error {
			calls++
			if calls < 3 {
				return &APIError{Provider: "test", Status: http.StatusServiceUnavailable}
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("Retry() = %v after %d calls, want nil after 3", err, calls)
		}
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		want := &APIError{Provider: "test", Status: http.StatusBadRequest}
		err := Retry(ctx, fastPolicy(3), nil, "test", func(context.Context) error {
			calls++
			return want
		})
		if !errors.Is(err, want) || calls != 1 {
			t.Errorf("Retry() = %v after %d calls", err, calls)
		}
	})

	t.Run("exhaustion wraps sentinel and cause", func(t *testing.T) {
		calls := 0
		err := Retry(ctx, fastPolicy(2), nil, "test", func(context.Context) error {
			calls++
			return &APIError{Provider: "test", Status: http.StatusTooManyRequests}
		})
		if !errors.Is(err, ErrRetriesExhausted) || !errors.Is(err, ErrRateLimited) {
			t.Errorf("Retry() = %v, want ErrRetriesExhausted wrapping ErrRateLimited", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := Retry(cctx, RetryPolicy{MaxRetries: 3, BaseDelay: time.Hour, MaxDelay: time.Hour, BackoffMultiplier: 1}, nil, "test",
			func(context.Context) error { return ErrServerError })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Retry() = %v, want context.Canceled", err)
		}
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &APIError{Status: 429}, true},
		{"server error", &APIError{Status: 502}, true},
		{"bad request", &APIError{Status: 400}, false},
		{"network", ErrNetworkError, true},
		{"cancelled", context.Canceled, false},
		{"no key", ErrNoAPIKey, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestJitteredDelay(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for retry := 1; retry <= 10; retry++ {
		d := JitteredDelay(rng, retry, time.Second)
		if d < 0 || d > time.Duration(1<<retry)*time.Second {
			t.Errorf("JitteredDelay(%d) = %v out of range", retry, d)
		}
	}
}
