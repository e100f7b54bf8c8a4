package db

import (
	"context"
)

const matchExists = `-- name: MatchExists :one
SELECT EXISTS(SELECT 1 FROM matches WHERE match_id = ?)
`

func (q *Queries) MatchExists(ctx context.Context, matchID string) (bool, error) {
	row := q.db.QueryRowContext(ctx, matchExists, matchID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const insertMatch = `-- name: InsertMatch :exec
INSERT INTO matches (match_id, map_name, match_type, created_at, created_ms)
VALUES (?, ?, ?, ?, ?)
`

type InsertMatchParams struct {
	MatchID   string
	MapName   string
	MatchType string
	CreatedAt string
	CreatedMs *int64
}

func (q *Queries) InsertMatch(ctx context.Context, arg InsertMatchParams) error {
	_, err := q.db.ExecContext(ctx, insertMatch,
		arg.MatchID,
		arg.MapName,
		arg.MatchType,
		arg.CreatedAt,
		arg.CreatedMs,
	)
	return err
}

const insertPlayerMatchStat = `-- name: InsertPlayerMatchStat :exec
INSERT INTO player_match_stats (
    id, player_id, match_id, dbnos, assists, kills, headshot_kills, damage_dealt,
    revives, team_kills, time_survived, win_place, match_created_at, match_created_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertPlayerMatchStatParams struct {
	ID             string
	PlayerID       string
	MatchID        string
	Dbnos          int64
	Assists        int64
	Kills          int64
	HeadshotKills  int64
	DamageDealt    float64
	Revives        int64
	TeamKills      int64
	TimeSurvived   float64
	WinPlace       int64
	MatchCreatedAt string
	MatchCreatedMs *int64
}

func (q *Queries) InsertPlayerMatchStat(ctx context.Context, arg InsertPlayerMatchStatParams) error {
	_, err := q.db.ExecContext(ctx, insertPlayerMatchStat,
		arg.ID,
		arg.PlayerID,
		arg.MatchID,
		arg.Dbnos,
		arg.Assists,
		arg.Kills,
		arg.HeadshotKills,
		arg.DamageDealt,
		arg.Revives,
		arg.TeamKills,
		arg.TimeSurvived,
		arg.WinPlace,
		arg.MatchCreatedAt,
		arg.MatchCreatedMs,
	)
	return err
}

const listPlayerMatchStatsByWindow = `-- name: ListPlayerMatchStatsByWindow :many
SELECT id, player_id, match_id, dbnos, assists, kills, headshot_kills, damage_dealt,
       revives, team_kills, time_survived, win_place, match_created_at, match_created_ms
FROM player_match_stats
WHERE (?1 IS NULL OR match_created_ms >= ?1)
  AND (?2 IS NULL OR match_created_ms < ?2)
ORDER BY match_created_ms, id
`

type ListPlayerMatchStatsByWindowParams struct {
	StartMs *int64
	EndMs   *int64
}

func (q *Queries) ListPlayerMatchStatsByWindow(ctx context.Context, arg ListPlayerMatchStatsByWindowParams) ([]PlayerMatchStat, error) {
	rows, err := q.db.QueryContext(ctx, listPlayerMatchStatsByWindow, arg.StartMs, arg.EndMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PlayerMatchStat
	for rows.Next() {
		var i PlayerMatchStat
		if err := rows.Scan(
			&i.ID,
			&i.PlayerID,
			&i.MatchID,
			&i.Dbnos,
			&i.Assists,
			&i.Kills,
			&i.HeadshotKills,
			&i.DamageDealt,
			&i.Revives,
			&i.TeamKills,
			&i.TimeSurvived,
			&i.WinPlace,
			&i.MatchCreatedAt,
			&i.MatchCreatedMs,
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
