package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"clan-tracker/internal/domain"
	"clan-tracker/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSyncer struct {
	calls atomic.Int32
	err   error
	block chan struct{}
}

func (s *stubSyncer) SynchronizeActive(ctx context.Context) (service.SyncReport, error) {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return service.SyncReport{}, ctx.Err()
		}
	}
	return service.SyncReport{MatchesInserted: 1}, s.err
}

type stubClan struct {
	calls atomic.Int32
}

func (c *stubClan) GetOrUpdate(ctx context.Context) (*domain.Clan, error) {
	c.calls.Add(1)
	return nil, errors.New("provider down")
}

func TestParseSyncTime(t *testing.T) {
	h, m, err := ParseSyncTime("02:00")
	require.NoError(t, err)
	assert.Equal(t, 2, h)
	assert.Equal(t, 0, m)

	h, m, err = ParseSyncTime(" 23:59 ")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 59, m)

	for _, bad := range []string{"", "24:00", "12:60", "noon", "1:2:3", "-1:30"} {
		_, _, err := ParseSyncTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewDailyWorker_FallsBackOnInvalidTime(t *testing.T) {
	w := newDailyWorker("25:99", &stubSyncer{}, nil, NewLocalLocker(), zerolog.Nop())
	assert.Equal(t, "0 2 * * *", w.Spec())

	w = newDailyWorker("04:30", &stubSyncer{}, nil, NewLocalLocker(), zerolog.Nop())
	assert.Equal(t, "30 4 * * *", w.Spec())
}

func TestDailyWorker_NextRunIsInClanZone(t *testing.T) {
	w := newDailyWorker("02:00", &stubSyncer{}, nil, NewLocalLocker(), zerolog.Nop())
	require.NoError(t, w.Start())
	defer w.Stop(context.Background())

	next := w.Next().UTC()
	assert.Equal(t, 5, next.Hour())
	assert.Equal(t, 0, next.Minute())
}

func TestDailyWorker_RunOnce(t *testing.T) {
	syncer := &stubSyncer{}
	clan := &stubClan{}
	w := newDailyWorker("02:00", syncer, clan, NewLocalLocker(), zerolog.Nop())

	require.NoError(t, w.RunOnce(context.Background()))
	assert.Equal(t, int32(1), syncer.calls.Load())
	assert.Equal(t, int32(1), clan.calls.Load())

	// lock is released after the run
	require.NoError(t, w.RunOnce(context.Background()))
	assert.Equal(t, int32(2), syncer.calls.Load())
}

func TestDailyWorker_RunOncePropagatesSyncError(t *testing.T) {
	boom := errors.New("db gone")
	w := newDailyWorker("02:00", &stubSyncer{err: boom}, nil, NewLocalLocker(), zerolog.Nop())

	assert.ErrorIs(t, w.RunOnce(context.Background()), boom)
}

func TestDailyWorker_SingleActiveRun(t *testing.T) {
	syncer := &stubSyncer{block: make(chan struct{})}
	locker := NewLocalLocker()
	w := newDailyWorker("02:00", syncer, nil, locker, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- w.RunOnce(context.Background()) }()

	require.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	err := w.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrLocked)
	assert.Equal(t, int32(1), syncer.calls.Load())

	close(syncer.block)
	require.NoError(t, <-done)
}

func TestLocalLocker_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2025, 9, 6, 12, 0, 0, 0, time.UTC)
	locker := NewLocalLocker()
	locker.now = func() time.Time { return now }

	unlock, err := locker.TryLock(context.Background(), "k", time.Minute)
	require.NoError(t, err)

	_, err = locker.TryLock(context.Background(), "k", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	now = now.Add(2 * time.Minute)
	unlock2, err := locker.TryLock(context.Background(), "k", time.Minute)
	require.NoError(t, err)

	// a stale unlock must not release the newer holder
	require.NoError(t, unlock(context.Background()))
	_, err = locker.TryLock(context.Background(), "k", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock2(context.Background()))
	_, err = locker.TryLock(context.Background(), "k", time.Minute)
	assert.NoError(t, err)
}

func TestNewRedisLocker_Errors(t *testing.T) {
	_, err := NewRedisLocker("not-a-url", zerolog.Nop())
	assert.Error(t, err)

	_, err = NewRedisLocker("redis://127.0.0.1:1/0", zerolog.Nop())
	assert.Error(t, err)
}

func TestDailyWorker_TriggerRunsInBackground(t *testing.T) {
	syncer := &stubSyncer{block: make(chan struct{})}
	w := newDailyWorker("02:00", syncer, nil, NewLocalLocker(), zerolog.Nop())

	require.NoError(t, w.Trigger(context.Background()))
	require.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, w.Trigger(context.Background()), ErrLocked)

	close(syncer.block)
	require.NoError(t, w.Stop(context.Background()))

	// the lock is free again once the background run returned
	require.NoError(t, w.RunOnce(context.Background()))
}

func TestDailyWorker_StopCancelsTriggeredRun(t *testing.T) {
	syncer := &stubSyncer{block: make(chan struct{})}
	w := newDailyWorker("02:00", syncer, nil, NewLocalLocker(), zerolog.Nop())

	require.NoError(t, w.Trigger(context.Background()))
	require.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, w.Stop(ctx))
}
