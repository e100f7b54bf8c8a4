package main

import (
	"context"
	"database/sql"

	"clan-tracker/internal/config"
	"clan-tracker/internal/constants"
	fxmodules "clan-tracker/internal/fx"
	"clan-tracker/internal/scheduler"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runScheduler),
	).Run()
}

func runScheduler(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	worker *scheduler.DailyWorker,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	runCtx, cancelRun := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.RunOnce {
				return worker.Start()
			}

			go func() {
				ctx, cancel := context.WithTimeout(runCtx, constants.SyncLockTTL)
				defer cancel()

				exitCode := 0
				if err := worker.RunOnce(ctx); err != nil {
					logger.Error().Err(err).Msg("sync failed")
					exitCode = 1
				} else {
					logger.Info().Msg("single sync completed")
				}
				shutdowner.Shutdown(fx.ExitCode(exitCode))
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancelRun()

			stopCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer cancel()
			if err := worker.Stop(stopCtx); err != nil {
				logger.Warn().Err(err).Msg("sync did not stop in time")
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("scheduler stopped")
			return nil
		},
	})
}
