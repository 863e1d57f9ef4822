// Package retry runs an operation again, with exponential backoff, while it fails
// with an error the caller classifies as transient.
//
//	err := retry.Do(ctx, retry.Policy{Attempts: 5, InitialBackoff: 50 * time.Millisecond},
//	    func() error { return save(ctx) },
//	    isLocked)
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	// Attempts is the total number of calls, the first included. Values below one
	// mean a single call.
	Attempts int
	// InitialBackoff is the wait before the second call. It doubles after every
	// further failure.
	InitialBackoff time.Duration
	// MaxBackoff caps a single wait. Zero means no cap.
	MaxBackoff time.Duration
	// Jitter adds up to this fraction of the wait, growing with the attempt number.
	Jitter float64
	// OnRetry, when set, is told about every failure that will be retried.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// ShouldRetryFunc classifies an error as transient. A nil ShouldRetryFunc retries
// every error.
type ShouldRetryFunc func(error) bool

// Do calls fn until it succeeds, fails with an error shouldRetry rejects, the
// attempts run out or ctx is done. Exhaustion wraps the last error.
func Do(ctx context.Context, p Policy, fn func() error, shouldRetry ShouldRetryFunc) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := p.backoff(attempt-1, attempts)
			if p.OnRetry != nil {
				p.OnRetry(attempt-1, wait, lastErr)
			}

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// backoff is the wait after the n-th failure (n >= 1).
func (p Policy) backoff(n, attempts int) time.Duration {
	wait := p.InitialBackoff << (n - 1)
	if wait < p.InitialBackoff {
		// Shift overflow.
		wait = p.MaxBackoff
	}
	if p.MaxBackoff > 0 && wait > p.MaxBackoff {
		wait = p.MaxBackoff
	}
	if p.Jitter > 0 {
		wait += time.Duration(float64(wait) * p.Jitter * float64(n) / float64(attempts))
	}
	return wait
}
