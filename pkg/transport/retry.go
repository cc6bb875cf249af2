package transport

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"
)

const baseBackoff = 100 * time.Millisecond

// Policy decides whether and when a failed attempt is retried.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Backoff returns the wait before retry number attempt (1-based).
	Backoff func(attempt int) time.Duration
	// Retryable reports whether a failed attempt may be retried. status is
	// zero when no response was received; err is nil when one was.
	Retryable func(method string, status int, err error) bool
}

// DefaultPolicy retries network failures and 5xx responses with exponential
// backoff, up to retries times.
func DefaultPolicy(retries int) Policy {
	return Policy{
		MaxRetries: retries,
		Backoff:    ExponentialBackoff,
		Retryable:  DefaultRetryable,
	}
}

// ExponentialBackoff waits 2^attempt * 100ms plus up to 20% jitter.
func ExponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		attempt = 16
	}
	d := time.Duration(1<<uint(attempt)) * baseBackoff
	jitter := time.Duration(rand.Int64N(int64(d)/5 + 1))
	return d + jitter
}

// DefaultRetryable retries when no response was received (except on
// cancellation or timeout), on 429 for idempotent methods, and on any status
// >= 500 regardless of method. 4xx otherwise fails immediately.
//
// Retrying a 5xx on POST assumes the backend batch upsert is idempotent by
// natural key.
func DefaultRetryable(method string, status int, err error) bool {
	if err != nil {
		return isNetworkError(err)
	}
	if status >= http.StatusInternalServerError {
		return true
	}
	return status == http.StatusTooManyRequests && isIdempotent(method)
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete, http.MethodTrace:
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
