// Package scheduler runs the daily ingestion at a fixed wall-clock time in
// the clan's calendar zone.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"clan-tracker/internal/config"
	"clan-tracker/internal/constants"
	"clan-tracker/internal/domain"
	"clan-tracker/internal/service"
	"clan-tracker/internal/timeutil"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const syncLockKey = "clan-tracker:sync"

type Synchronizer interface {
	SynchronizeActive(ctx context.Context) (service.SyncReport, error)
}

type ClanRefresher interface {
	GetOrUpdate(ctx context.Context) (*domain.Clan, error)
}

type DailyWorker struct {
	syncer Synchronizer
	clan   ClanRefresher
	locker Locker
	logger zerolog.Logger

	cron    *cron.Cron
	spec    string
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	runs   sync.WaitGroup
}

func NewDailyWorker(cfg *config.Config, syncer *service.SyncService, clan *service.ClanService, locker Locker, logger zerolog.Logger) *DailyWorker {
	return newDailyWorker(cfg.SyncTime, syncer, clan, locker, logger)
}

func newDailyWorker(syncTime string, syncer Synchronizer, clan ClanRefresher, locker Locker, logger zerolog.Logger) *DailyWorker {
	hour, minute, err := ParseSyncTime(syncTime)
	if err != nil {
		logger.Warn().Err(err).Str("sync_time", syncTime).Str("fallback", constants.DefaultSyncTime).Msg("invalid SYNC_TIME, using fallback")
		hour, minute, _ = ParseSyncTime(constants.DefaultSyncTime)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &DailyWorker{
		ctx:     ctx,
		cancel:  cancel,
		syncer:  syncer,
		clan:    clan,
		locker:  locker,
		logger:  logger,
		cron:    cron.New(cron.WithLocation(timeutil.ClanZone)),
		spec:    fmt.Sprintf("%d %d * * *", minute, hour),
		timeout: constants.SyncLockTTL,
	}
}

// ParseSyncTime reads an HH:mm wall-clock time.
func ParseSyncTime(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:mm, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

func (w *DailyWorker) Spec() string {
	return w.spec
}

func (w *DailyWorker) Start() error {
	_, err := w.cron.AddFunc(w.spec, func() {
		ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
		defer cancel()

		if err := w.RunOnce(ctx); err != nil && !errors.Is(err, ErrLocked) {
			w.logger.Error().Err(err).Msg("scheduled sync failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	w.cron.Start()
	w.logger.Info().Str("spec", w.spec).Time("next_run", w.Next()).Msg("daily sync scheduled")
	return nil
}

// Stop cancels in-flight runs and waits for them to return or for ctx to expire.
func (w *DailyWorker) Stop(ctx context.Context) error {
	w.cancel()
	cronDone := w.cron.Stop().Done()

	done := make(chan struct{})
	go func() {
		<-cronDone
		w.runs.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *DailyWorker) Next() time.Time {
	entries := w.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce performs one synchronization under the sync lock, refreshing the
// clan snapshot alongside it.
func (w *DailyWorker) RunOnce(ctx context.Context) error {
	unlock, err := w.lock(ctx)
	if err != nil {
		return err
	}
	defer w.release(unlock)

	return w.run(ctx)
}

// Trigger starts a run in the background and returns once the lock is held.
// It fails with ErrLocked when a run is already in progress.
func (w *DailyWorker) Trigger(ctx context.Context) error {
	unlock, err := w.lock(ctx)
	if err != nil {
		return err
	}

	w.runs.Add(1)
	go func() {
		defer w.runs.Done()
		defer w.release(unlock)

		runCtx, cancel := context.WithTimeout(w.ctx, w.timeout)
		defer cancel()

		if err := w.run(runCtx); err != nil {
			w.logger.Error().Err(err).Msg("manual sync failed")
		}
	}()
	return nil
}

func (w *DailyWorker) lock(ctx context.Context) (Unlock, error) {
	unlock, err := w.locker.TryLock(ctx, syncLockKey, w.timeout)
	if err != nil {
		if errors.Is(err, ErrLocked) {
			w.logger.Warn().Msg("another sync is running, skipping")
		}
		return nil, err
	}
	return unlock, nil
}

func (w *DailyWorker) release(unlock Unlock) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()
	unlock(ctx)
}

func (w *DailyWorker) run(ctx context.Context) error {
	start := time.Now()
	w.logger.Info().Msg("sync started")

	g, gctx := errgroup.WithContext(ctx)

	var report service.SyncReport
	g.Go(func() error {
		var err error
		report, err = w.syncer.SynchronizeActive(gctx)
		return err
	})

	if w.clan != nil {
		g.Go(func() error {
			if _, err := w.clan.GetOrUpdate(gctx); err != nil {
				w.logger.Warn().Err(err).Msg("clan snapshot refresh failed")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	w.logger.Info().
		Dur("duration", time.Since(start)).
		Int("players_failed", report.PlayersFailed).
		Int("matches_inserted", report.MatchesInserted).
		Int("stats_inserted", report.StatsInserted).
		Msg("sync finished")
	return nil
}
