package db

import (
	"context"
	"time"
)

const recentGameColumns = `id, player_id, match_id, last_updated, created_at, map_name, game_mode, match_type,
       is_custom_match, dbnos, assists, boosts, damage_dealt, headshot_kills, heals, kill_place,
       kill_streaks, kills, longest_kill, revives, ride_distance, swim_distance, walk_distance,
       road_kills, team_kills, time_survived, vehicle_destroys, weapons_acquired, win_place`

const listRecentGames = `-- name: ListRecentGames :many
SELECT ` + recentGameColumns + `
FROM recent_games
WHERE player_id = ?
ORDER BY last_updated DESC, created_at DESC
LIMIT ?
`

type ListRecentGamesParams struct {
	PlayerID string
	Limit    int64
}

func (q *Queries) ListRecentGames(ctx context.Context, arg ListRecentGamesParams) ([]RecentGame, error) {
	rows, err := q.db.QueryContext(ctx, listRecentGames, arg.PlayerID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecentGame
	for rows.Next() {
		var i RecentGame
		if err := rows.Scan(
			&i.ID,
			&i.PlayerID,
			&i.MatchID,
			&i.LastUpdated,
			&i.CreatedAt,
			&i.MapName,
			&i.GameMode,
			&i.MatchType,
			&i.IsCustomMatch,
			&i.Dbnos,
			&i.Assists,
			&i.Boosts,
			&i.DamageDealt,
			&i.HeadshotKills,
			&i.Heals,
			&i.KillPlace,
			&i.KillStreaks,
			&i.Kills,
			&i.LongestKill,
			&i.Revives,
			&i.RideDistance,
			&i.SwimDistance,
			&i.WalkDistance,
			&i.RoadKills,
			&i.TeamKills,
			&i.TimeSurvived,
			&i.VehicleDestroys,
			&i.WeaponsAcquired,
			&i.WinPlace,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const recentGameExists = `-- name: RecentGameExists :one
SELECT EXISTS(SELECT 1 FROM recent_games WHERE player_id = ? AND match_id = ?)
`

type RecentGameExistsParams struct {
	PlayerID string
	MatchID  string
}

func (q *Queries) RecentGameExists(ctx context.Context, arg RecentGameExistsParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, recentGameExists, arg.PlayerID, arg.MatchID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const insertRecentGame = `-- name: InsertRecentGame :exec
INSERT INTO recent_games (` + recentGameColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertRecentGameParams RecentGame

func (q *Queries) InsertRecentGame(ctx context.Context, arg InsertRecentGameParams) error {
	_, err := q.db.ExecContext(ctx, insertRecentGame,
		arg.ID,
		arg.PlayerID,
		arg.MatchID,
		arg.LastUpdated,
		arg.CreatedAt,
		arg.MapName,
		arg.GameMode,
		arg.MatchType,
		arg.IsCustomMatch,
		arg.Dbnos,
		arg.Assists,
		arg.Boosts,
		arg.DamageDealt,
		arg.HeadshotKills,
		arg.Heals,
		arg.KillPlace,
		arg.KillStreaks,
		arg.Kills,
		arg.LongestKill,
		arg.Revives,
		arg.RideDistance,
		arg.SwimDistance,
		arg.WalkDistance,
		arg.RoadKills,
		arg.TeamKills,
		arg.TimeSurvived,
		arg.VehicleDestroys,
		arg.WeaponsAcquired,
		arg.WinPlace,
	)
	return err
}

const touchRecentGame = `-- name: TouchRecentGame :exec
UPDATE recent_games
SET last_updated = ?
WHERE id = ?
`

type TouchRecentGameParams struct {
	LastUpdated time.Time
	ID          string
}

func (q *Queries) TouchRecentGame(ctx context.Context, arg TouchRecentGameParams) error {
	_, err := q.db.ExecContext(ctx, touchRecentGame, arg.LastUpdated, arg.ID)
	return err
}
