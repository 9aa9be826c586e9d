package core

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy configures capped exponential backoff.
type RetryPolicy struct {
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryPolicy provides sensible defaults
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Delay returns the wait before the given retry attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	delay := float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(attempt-1))

	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	return time.Duration(delay)
}

// Retry runs operation until it succeeds, returns a non-retryable error, or
// the policy's retries are used up. Exhaustion wraps ErrRetriesExhausted and
// the last error.
func Retry(ctx context.Context, p RetryPolicy, logger *slog.Logger, name string, operation func(context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.Delay(attempt)
			logger.Debug("retry backoff",
				"operation", name,
				"attempt", attempt,
				"delay", delay.String())

			if err := Sleep(ctx, delay); err != nil {
				logger.Warn("cancelled during backoff",
					"operation", name,
					"attempt", attempt)
				return err
			}
		}

		err := operation(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("retry succeeded",
					"operation", name,
					"attempt", attempt)
			}
			return nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		logger.Warn("operation failed, will retry",
			"operation", name,
			"attempt", attempt,
			"error", err)
	}

	logger.Error("retries exhausted",
		"operation", name,
		"max_retries", p.MaxRetries,
		"last_error", lastErr)

	return fmt.Errorf("%s: %w after %d retries: %w", name, ErrRetriesExhausted, p.MaxRetries, lastErr)
}

// JitteredDelay returns a random fraction of unit * 2^retry.
func JitteredDelay(rng *rand.Rand, retry int, unit time.Duration) time.Duration {
	return time.Duration(rng.Float64() * math.Pow(2, float64(retry)) * float64(unit))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
