package db

import (
	"context"
	"time"
)

const getLatestNickname = `SELECT id, player_id, nickname, seen_at
FROM nickname_history
WHERE player_id = $1
ORDER BY seen_at DESC
LIMIT 1`

func (q *Queries) GetLatestNickname(ctx context.Context, playerID int64) (NicknameHistory, error) {
	row := q.db.QueryRowContext(ctx, getLatestNickname, playerID)
	var i NicknameHistory
	err := row.Scan(&i.ID, &i.PlayerID, &i.Nickname, &i.SeenAt)
	return i, err
}

const insertNickname = `INSERT INTO nickname_history (id, player_id, nickname, seen_at)
VALUES ($1, $2, $3, $4)`

type InsertNicknameParams struct {
	ID       string
	PlayerID int64
	Nickname string
	SeenAt   time.Time
}

func (q *Queries) InsertNickname(ctx context.Context, arg InsertNicknameParams) error {
	_, err := q.db.ExecContext(ctx, insertNickname, arg.ID, arg.PlayerID, arg.Nickname, arg.SeenAt)
	return err
}

const listNicknames = `SELECT id, player_id, nickname, seen_at
FROM nickname_history
WHERE player_id = $1
ORDER BY seen_at DESC
LIMIT $2`

type ListNicknamesParams struct {
	PlayerID int64
	Limit    int64
}

func (q *Queries) ListNicknames(ctx context.Context, arg ListNicknamesParams) ([]NicknameHistory, error) {
	rows, err := q.db.QueryContext(ctx, listNicknames, arg.PlayerID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NicknameHistory
	for rows.Next() {
		var i NicknameHistory
		if err := rows.Scan(&i.ID, &i.PlayerID, &i.Nickname, &i.SeenAt); err != nil {
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
