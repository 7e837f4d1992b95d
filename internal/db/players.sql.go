package db

import (
	"context"
	"database/sql"
	"time"
)

const getPlayer = `SELECT id, name, tier, playfab_id, created_at, updated_at
FROM players
WHERE id = $1`

func (q *Queries) GetPlayer(ctx context.Context, id int64) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayer, id)
	var i Player
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Tier,
		&i.PlayfabID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updatePlayerPlayfabID = `UPDATE players
SET playfab_id = $1, updated_at = $2
WHERE id = $3`

type UpdatePlayerPlayfabIDParams struct {
	PlayfabID sql.NullString
	UpdatedAt time.Time
	ID        int64
}

func (q *Queries) UpdatePlayerPlayfabID(ctx context.Context, arg UpdatePlayerPlayfabIDParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePlayerPlayfabID, arg.PlayfabID, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listPlayerNames = `SELECT id, name
FROM players
ORDER BY tier, name`

type ListPlayerNamesRow struct {
	ID   int64
	Name string
}

func (q *Queries) ListPlayerNames(ctx context.Context) ([]ListPlayerNamesRow, error) {
	rows, err := q.db.QueryContext(ctx, listPlayerNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPlayerNamesRow
	for rows.Next() {
		var i ListPlayerNamesRow
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
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
