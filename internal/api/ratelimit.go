package api

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// RateLimiter spaces player lookups by a fixed interval. Callers are
// serialized, and both the queue wait and the spacing wait honour ctx.
type RateLimiter struct {
	sem      *semaphore.Weighted
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		sem:      semaphore.NewWeighted(1),
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// WithClock swaps the time source, used by tests to avoid real waits.
func (l *RateLimiter) WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *RateLimiter {
	l.now = now
	l.sleep = sleep
	return l
}

// Do waits for its turn, then runs send. The last-sent time is recorded
// after send returns, whatever its outcome.
func (l *RateLimiter) Do(ctx context.Context, send func() error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)

	if !l.last.IsZero() {
		if wait := l.interval - l.now().Sub(l.last); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err := send()
	l.last = l.now()
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
