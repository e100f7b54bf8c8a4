package repository

import (
	"context"
	"database/sql"
	"fmt"

	"clan-tracker/internal/db"
	"clan-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type RosterRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewRosterRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *RosterRepository {
	return &RosterRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *RosterRepository) ActiveMembers(ctx context.Context) ([]domain.RosterMember, error) {
	rows, err := r.queries.ListActiveRosterMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active roster: %w", err)
	}

	members := make([]domain.RosterMember, len(rows))
	for i, row := range rows {
		members[i] = domain.RosterMember{
			PlayerID: row.PlayerID,
			Nickname: row.Nickname,
			Active:   row.Active,
		}
	}
	return members, nil
}

func (r *RosterRepository) Upsert(ctx context.Context, member domain.RosterMember) error {
	return r.queries.UpsertRosterMember(ctx, db.UpsertRosterMemberParams{
		PlayerID: member.PlayerID,
		Nickname: member.Nickname,
		Active:   member.Active,
	})
}
