package api

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	slept  []time.Duration
	onWait func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if c.onWait != nil {
		c.onWait()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total time.Duration
	for _, d := range c.slept {
		total += d
	}
	return total
}

func TestRateLimiter_SpacesSequentialCalls(t *testing.T) {
	clock := newFakeClock()
	limiter := NewRateLimiter(6*time.Second).WithClock(clock.Now, clock.Sleep)

	const calls = 5
	var sent []time.Time
	for i := 0; i < calls; i++ {
		err := limiter.Do(context.Background(), func() error {
			sent = append(sent, clock.Now())
			return nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, time.Duration(calls-1)*6*time.Second, clock.Total())
	for i := 1; i < len(sent); i++ {
		assert.GreaterOrEqual(t, sent[i].Sub(sent[i-1]), 6*time.Second)
	}
}

func TestRateLimiter_ConcurrentCallersAreSerialized(t *testing.T) {
	clock := newFakeClock()
	limiter := NewRateLimiter(6*time.Second).WithClock(clock.Now, clock.Sleep)

	var (
		mu       sync.Mutex
		inFlight int
		maxSeen  int
		sent     []time.Time
	)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := limiter.Do(context.Background(), func() error {
				mu.Lock()
				inFlight++
				if inFlight > maxSeen {
					maxSeen = inFlight
				}
				sent = append(sent, clock.Now())
				mu.Unlock()

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 18*time.Second, clock.Total())
	require.Len(t, sent, 4)
}

func TestRateLimiter_RecordsSendEvenOnError(t *testing.T) {
	clock := newFakeClock()
	limiter := NewRateLimiter(6*time.Second).WithClock(clock.Now, clock.Sleep)

	boom := errors.New("boom")
	err := limiter.Do(context.Background(), func() error { return boom })
	assert.ErrorIs(t, err, boom)

	require.NoError(t, limiter.Do(context.Background(), func() error { return nil }))
	assert.Equal(t, 6*time.Second, clock.Total())
}

func TestRateLimiter_CancelDuringWaitSkipsSend(t *testing.T) {
	clock := newFakeClock()
	limiter := NewRateLimiter(6*time.Second).WithClock(clock.Now, clock.Sleep)

	require.NoError(t, limiter.Do(context.Background(), func() error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	clock.onWait = cancel

	called := false
	err := limiter.Do(ctx, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRateLimiter_CancelWhileQueued(t *testing.T) {
	limiter := NewRateLimiter(time.Hour)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = limiter.Do(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	called := false
	err := limiter.Do(ctx, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
	close(release)
}

func TestRateLimiter_RealSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
