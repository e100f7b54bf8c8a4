package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clan-tracker/internal/db"
	"clan-tracker/internal/domain"
	"clan-tracker/internal/timeutil"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *MatchRepository) Exists(ctx context.Context, matchID string) (bool, error) {
	return r.queries.MatchExists(ctx, matchID)
}

func (r *MatchRepository) InsertMatch(ctx context.Context, match *domain.Match) error {
	return insertMatch(ctx, r.queries, match)
}

func (r *MatchRepository) InsertPlayerStat(ctx context.Context, stat *domain.PlayerMatchStat) error {
	return insertPlayerStat(ctx, r.queries, stat)
}

// ListByTimeWindow returns stats whose match started in [start, end).
// Rows with an unparseable creation time only appear when both bounds are nil.
func (r *MatchRepository) ListByTimeWindow(ctx context.Context, start, end *time.Time) ([]domain.PlayerMatchStat, error) {
	rows, err := r.queries.ListPlayerMatchStatsByWindow(ctx, db.ListPlayerMatchStatsByWindowParams{
		StartMs: boundMillis(start),
		EndMs:   boundMillis(end),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list match stats: %w", err)
	}

	stats := make([]domain.PlayerMatchStat, len(rows))
	for i, row := range rows {
		stats[i] = domain.PlayerMatchStat{
			ID:             row.ID,
			PlayerID:       row.PlayerID,
			MatchID:        row.MatchID,
			DBNOs:          int(row.Dbnos),
			Assists:        int(row.Assists),
			Kills:          int(row.Kills),
			HeadshotKills:  int(row.HeadshotKills),
			DamageDealt:    row.DamageDealt,
			Revives:        int(row.Revives),
			TeamKills:      int(row.TeamKills),
			TimeSurvived:   row.TimeSurvived,
			WinPlace:       int(row.WinPlace),
			MatchCreatedAt: row.MatchCreatedAt,
		}
	}
	return stats, nil
}

func insertMatch(ctx context.Context, q *db.Queries, match *domain.Match) error {
	err := q.InsertMatch(ctx, db.InsertMatchParams{
		MatchID:     match.MatchID,
		MapName:     match.MapName,
		MatchType:   match.MatchType,
		CreatedAt:   match.CreatedAt,
		CreatedMs: providerMillis(match.CreatedAt),
	})
	return translate(err)
}

func insertPlayerStat(ctx context.Context, q *db.Queries, stat *domain.PlayerMatchStat) error {
	if stat.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate id: %w", err)
		}
		stat.ID = id
	}

	err := q.InsertPlayerMatchStat(ctx, db.InsertPlayerMatchStatParams{
		ID:               stat.ID,
		PlayerID:         stat.PlayerID,
		MatchID:          stat.MatchID,
		Dbnos:            int64(stat.DBNOs),
		Assists:          int64(stat.Assists),
		Kills:            int64(stat.Kills),
		HeadshotKills:    int64(stat.HeadshotKills),
		DamageDealt:      stat.DamageDealt,
		Revives:          int64(stat.Revives),
		TeamKills:        int64(stat.TeamKills),
		TimeSurvived:     stat.TimeSurvived,
		WinPlace:         int64(stat.WinPlace),
		MatchCreatedAt:   stat.MatchCreatedAt,
		MatchCreatedMs: providerMillis(stat.MatchCreatedAt),
	})
	return translate(err)
}

func providerMillis(s string) *int64 {
	t, ok := timeutil.ParseProviderTime(s)
	if !ok {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// boundMillis rounds up to the next whole millisecond. Stored times are whole
// milliseconds, so >= and < against the rounded bound match the exact instant.
func boundMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.Add(time.Millisecond - time.Nanosecond).UnixMilli()
	return &ms
}
