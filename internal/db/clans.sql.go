package db

import (
	"context"
	"time"
)

const getClan = `-- name: GetClan :one
SELECT clan_id, name, tag, level, member_count, updated_at
FROM clans
WHERE clan_id = ?
`

func (q *Queries) GetClan(ctx context.Context, clanID string) (Clan, error) {
	row := q.db.QueryRowContext(ctx, getClan, clanID)
	var i Clan
	err := row.Scan(
		&i.ClanID,
		&i.Name,
		&i.Tag,
		&i.Level,
		&i.MemberCount,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertClan = `-- name: UpsertClan :exec
INSERT INTO clans (clan_id, name, tag, level, member_count, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(clan_id) DO UPDATE SET
    name = excluded.name,
    tag = excluded.tag,
    level = excluded.level,
    member_count = excluded.member_count,
    updated_at = excluded.updated_at
`

type UpsertClanParams struct {
	ClanID      string
	Name        string
	Tag         string
	Level       int64
	MemberCount int64
	UpdatedAt   time.Time
}

func (q *Queries) UpsertClan(ctx context.Context, arg UpsertClanParams) error {
	_, err := q.db.ExecContext(ctx, upsertClan,
		arg.ClanID,
		arg.Name,
		arg.Tag,
		arg.Level,
		arg.MemberCount,
		arg.UpdatedAt,
	)
	return err
}
