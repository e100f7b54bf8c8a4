package db

import (
	"context"
	"time"
)

const getLifetimeStats = `-- name: GetLifetimeStats :one
SELECT player_id, raw_json, last_updated
FROM lifetime_stats
WHERE player_id = ?
`

func (q *Queries) GetLifetimeStats(ctx context.Context, playerID string) (LifetimeStat, error) {
	row := q.db.QueryRowContext(ctx, getLifetimeStats, playerID)
	var i LifetimeStat
	err := row.Scan(&i.PlayerID, &i.RawJson, &i.LastUpdated)
	return i, err
}

const upsertLifetimeStats = `-- name: UpsertLifetimeStats :exec
INSERT INTO lifetime_stats (player_id, raw_json, last_updated)
VALUES (?, ?, ?)
ON CONFLICT(player_id) DO UPDATE SET
    raw_json = excluded.raw_json,
    last_updated = excluded.last_updated
`

type UpsertLifetimeStatsParams struct {
	PlayerID    string
	RawJson     string
	LastUpdated time.Time
}

func (q *Queries) UpsertLifetimeStats(ctx context.Context, arg UpsertLifetimeStatsParams) error {
	_, err := q.db.ExecContext(ctx, upsertLifetimeStats, arg.PlayerID, arg.RawJson, arg.LastUpdated)
	return err
}
