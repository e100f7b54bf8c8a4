package repository

import (
	"context"
	"database/sql"

	"clan-tracker/internal/db"
	"clan-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type LifetimeRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewLifetimeRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *LifetimeRepository {
	return &LifetimeRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *LifetimeRepository) Get(ctx context.Context, playerID string) (*domain.LifetimeStats, error) {
	row, err := r.queries.GetLifetimeStats(ctx, playerID)
	if err != nil {
		return nil, translate(err)
	}

	return &domain.LifetimeStats{
		PlayerID:    row.PlayerID,
		RawJSON:     row.RawJson,
		LastUpdated: row.LastUpdated,
	}, nil
}

func (r *LifetimeRepository) Upsert(ctx context.Context, stats *domain.LifetimeStats) error {
	return r.queries.UpsertLifetimeStats(ctx, db.UpsertLifetimeStatsParams{
		PlayerID:    stats.PlayerID,
		RawJson:     stats.RawJSON,
		LastUpdated: stats.LastUpdated.UTC(),
	})
}
