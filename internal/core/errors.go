package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrNoAPIKey               = errors.New("API key not configured")
	ErrRateLimited            = errors.New("rate limited")
	ErrServerError            = errors.New("server error")
	ErrNetworkError           = errors.New("network error")
	ErrRetriesExhausted       = errors.New("retries exhausted")
	ErrUploadRetriesExhausted = errors.New("upload retries exhausted")
	ErrInvalidPrivacy         = errors.New("invalid privacy status")
	ErrUnknownProvider        = errors.New("unknown provider")
)

// APIError is a non-success response from a remote service.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Body)
}

// Unwrap classifies the status so callers can match on ErrRateLimited and
// ErrServerError.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status >= 500:
		return ErrServerError
	}
	return nil
}

// IsRetryable determines if an error can be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrNetworkError) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
