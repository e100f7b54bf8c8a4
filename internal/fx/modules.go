package fx

import (
	"context"
	"database/sql"
	"io"

	"clan-tracker/internal/api"
	"clan-tracker/internal/config"
	"clan-tracker/internal/constants"
	"clan-tracker/internal/database"
	"clan-tracker/internal/db"
	"clan-tracker/internal/logger"
	"clan-tracker/internal/repository"
	"clan-tracker/internal/scheduler"
	"clan-tracker/internal/server"
	"clan-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// one limiter per process, shared by ingestion and on-demand refreshes
func ProvideRateLimiter() *api.RateLimiter {
	return api.NewRateLimiter(constants.PlayerLookupInterval)
}

func ProvideLocker(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (scheduler.Locker, error) {
	locker, err := scheduler.NewLocker(cfg, logger)
	if err != nil {
		return nil, err
	}
	if closer, ok := locker.(io.Closer); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})
	}
	return locker, nil
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewRosterRepository),
	fx.Provide(repository.NewClanRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewLifetimeRepository),
	fx.Provide(repository.NewRecentGameRepository),
	// api client
	fx.Provide(ProvideRateLimiter),
	fx.Provide(api.NewPubgClient),
	// svc
	fx.Provide(service.NewSyncService),
	fx.Provide(service.NewLifetimeService),
	fx.Provide(service.NewRecentGamesService),
	fx.Provide(service.NewRankingService),
	fx.Provide(service.NewClanService),
	// scheduling
	fx.Provide(ProvideLocker),
	fx.Provide(scheduler.NewDailyWorker),
	// server
	fx.Provide(server.NewTrackerServer),
)
