package repository

import (
	"context"
	"database/sql"

	"clan-tracker/internal/db"
	"clan-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type ClanRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewClanRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *ClanRepository {
	return &ClanRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *ClanRepository) Get(ctx context.Context, clanID string) (*domain.Clan, error) {
	row, err := r.queries.GetClan(ctx, clanID)
	if err != nil {
		return nil, translate(err)
	}

	return &domain.Clan{
		ClanID:      row.ClanID,
		Name:        row.Name,
		Tag:         row.Tag,
		Level:       int(row.Level),
		MemberCount: int(row.MemberCount),
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func (r *ClanRepository) Upsert(ctx context.Context, clan *domain.Clan) error {
	return r.queries.UpsertClan(ctx, db.UpsertClanParams{
		ClanID:      clan.ClanID,
		Name:        clan.Name,
		Tag:         clan.Tag,
		Level:       int64(clan.Level),
		MemberCount: int64(clan.MemberCount),
		UpdatedAt:   clan.UpdatedAt.UTC(),
	})
}
