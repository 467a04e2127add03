package resilience

import (
	"context"
	"time"
)

// Sleeper abstracts time-based waiting for testing.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper waits on the wall clock.
type RealSleeper struct{}

// Sleep waits for d or until ctx is done.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryPolicy retries with a fixed delay between attempts.
type RetryPolicy struct {
	Retries int           // Extra attempts after the first (0 = no retries)
	Delay   time.Duration // Wait between attempts
	Sleeper Sleeper       // nil uses RealSleeper

	// ShouldRetry selects retryable errors. nil retries every error.
	ShouldRetry func(err error) bool
	// OnRetry is called before each wait with the attempt about to run (2, 3, ...).
	OnRetry func(attempt int, err error)
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted, in which case the last error is returned as is.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = RealSleeper{}
	}

	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt <= max(p.Retries, 0); attempt++ {
		if attempt > 0 {
			if p.OnRetry != nil {
				p.OnRetry(attempt+1, lastErr)
			}
			if err := sleeper.Sleep(ctx, p.Delay); err != nil {
				return zero, lastErr
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if p.ShouldRetry != nil && !p.ShouldRetry(err) {
			return zero, err
		}
		if ctx.Err() != nil {
			return zero, err
		}
	}
	return zero, lastErr
}
