package db

import (
	"context"
)

const listActiveRosterMembers = `-- name: ListActiveRosterMembers :many
SELECT player_id, nickname, active
FROM roster_members
WHERE active = 1
ORDER BY nickname
`

func (q *Queries) ListActiveRosterMembers(ctx context.Context) ([]RosterMember, error) {
	rows, err := q.db.QueryContext(ctx, listActiveRosterMembers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RosterMember
	for rows.Next() {
		var i RosterMember
		if err := rows.Scan(&i.PlayerID, &i.Nickname, &i.Active); err != nil {
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

const upsertRosterMember = `-- name: UpsertRosterMember :exec
INSERT INTO roster_members (player_id, nickname, active)
VALUES (?, ?, ?)
ON CONFLICT(player_id) DO UPDATE SET
    nickname = excluded.nickname,
    active = excluded.active
`

type UpsertRosterMemberParams struct {
	PlayerID string
	Nickname string
	Active   bool
}

func (q *Queries) UpsertRosterMember(ctx context.Context, arg UpsertRosterMemberParams) error {
	_, err := q.db.ExecContext(ctx, upsertRosterMember, arg.PlayerID, arg.Nickname, arg.Active)
	return err
}
