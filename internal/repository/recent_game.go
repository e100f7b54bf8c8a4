package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clan-tracker/internal/db"
	"clan-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type RecentGameRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewRecentGameRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *RecentGameRepository {
	return &RecentGameRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// ListLatest returns the most recently refreshed games for a player, newest first.
func (r *RecentGameRepository) ListLatest(ctx context.Context, playerID string, limit int) ([]domain.RecentGame, error) {
	rows, err := r.queries.ListRecentGames(ctx, db.ListRecentGamesParams{
		PlayerID: playerID,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent games: %w", err)
	}

	games := make([]domain.RecentGame, len(rows))
	for i, row := range rows {
		games[i] = recentGameFromRow(row)
	}
	return games, nil
}

func (r *RecentGameRepository) ExistsForPlayer(ctx context.Context, playerID, matchID string) (bool, error) {
	return r.queries.RecentGameExists(ctx, db.RecentGameExistsParams{
		PlayerID: playerID,
		MatchID:  matchID,
	})
}

// SaveBatch inserts new games and stamps the retained ones with the same refresh time.
func (r *RecentGameRepository) SaveBatch(ctx context.Context, inserts []domain.RecentGame, touchIDs []string, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for i := range inserts {
		inserts[i].LastUpdated = at
		if err := insertRecentGame(ctx, qtx, &inserts[i]); err != nil {
			return fmt.Errorf("failed to insert recent game %s: %w", inserts[i].MatchID, err)
		}
	}

	for _, id := range touchIDs {
		err := qtx.TouchRecentGame(ctx, db.TouchRecentGameParams{
			LastUpdated: at.UTC(),
			ID:          id,
		})
		if err != nil {
			return fmt.Errorf("failed to touch recent game %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertRecentGame(ctx context.Context, q *db.Queries, game *domain.RecentGame) error {
	if game.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate id: %w", err)
		}
		game.ID = id
	}

	err := q.InsertRecentGame(ctx, db.InsertRecentGameParams{
		ID:              game.ID,
		PlayerID:        game.PlayerID,
		MatchID:         game.MatchID,
		LastUpdated:     game.LastUpdated.UTC(),
		CreatedAt:       game.CreatedAt,
		MapName:         game.MapName,
		GameMode:        game.GameMode,
		MatchType:       game.MatchType,
		IsCustomMatch:   game.IsCustomMatch,
		Dbnos:           int64(game.DBNOs),
		Assists:         int64(game.Assists),
		Boosts:          int64(game.Boosts),
		DamageDealt:     game.DamageDealt,
		HeadshotKills:   int64(game.HeadshotKills),
		Heals:           int64(game.Heals),
		KillPlace:       int64(game.KillPlace),
		KillStreaks:     int64(game.KillStreaks),
		Kills:           int64(game.Kills),
		LongestKill:     game.LongestKill,
		Revives:         int64(game.Revives),
		RideDistance:    game.RideDistance,
		SwimDistance:    game.SwimDistance,
		WalkDistance:    game.WalkDistance,
		RoadKills:       int64(game.RoadKills),
		TeamKills:       int64(game.TeamKills),
		TimeSurvived:    game.TimeSurvived,
		VehicleDestroys: int64(game.VehicleDestroys),
		WeaponsAcquired: int64(game.WeaponsAcquired),
		WinPlace:        int64(game.WinPlace),
	})
	return translate(err)
}

func recentGameFromRow(row db.RecentGame) domain.RecentGame {
	return domain.RecentGame{
		ID:              row.ID,
		PlayerID:        row.PlayerID,
		MatchID:         row.MatchID,
		LastUpdated:     row.LastUpdated,
		CreatedAt:       row.CreatedAt,
		MapName:         row.MapName,
		GameMode:        row.GameMode,
		MatchType:       row.MatchType,
		IsCustomMatch:   row.IsCustomMatch,
		DBNOs:           int(row.Dbnos),
		Assists:         int(row.Assists),
		Boosts:          int(row.Boosts),
		DamageDealt:     row.DamageDealt,
		HeadshotKills:   int(row.HeadshotKills),
		Heals:           int(row.Heals),
		KillPlace:       int(row.KillPlace),
		KillStreaks:     int(row.KillStreaks),
		Kills:           int(row.Kills),
		LongestKill:     row.LongestKill,
		Revives:         int(row.Revives),
		RideDistance:    row.RideDistance,
		SwimDistance:    row.SwimDistance,
		WalkDistance:    row.WalkDistance,
		RoadKills:       int(row.RoadKills),
		TeamKills:       int(row.TeamKills),
		TimeSurvived:    row.TimeSurvived,
		VehicleDestroys: int(row.VehicleDestroys),
		WeaponsAcquired: int(row.WeaponsAcquired),
		WinPlace:        int(row.WinPlace),
	}
}
