package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/sqlc-dev/pqtype"
)

const playerStatColumns = `player_id, playfab_id, display_name, global_rank, level, kd_ratio, win_rate,
    hours_played, matches_played, kills, deaths, wins, losses, favorite_class, favorite_weapon,
    scrape_success, error_message, raw_data, source, last_updated, last_success_at`

func scanPlayerStat(row interface{ Scan(...interface{}) error }) (PlayerStat, error) {
	var i PlayerStat
	err := row.Scan(
		&i.PlayerID,
		&i.PlayfabID,
		&i.DisplayName,
		&i.GlobalRank,
		&i.Level,
		&i.KdRatio,
		&i.WinRate,
		&i.HoursPlayed,
		&i.MatchesPlayed,
		&i.Kills,
		&i.Deaths,
		&i.Wins,
		&i.Losses,
		&i.FavoriteClass,
		&i.FavoriteWeapon,
		&i.ScrapeSuccess,
		&i.ErrorMessage,
		&i.RawData,
		&i.Source,
		&i.LastUpdated,
		&i.LastSuccessAt,
	)
	return i, err
}

const getPlayerStats = `SELECT ` + playerStatColumns + `
FROM player_stats
WHERE player_id = $1`

func (q *Queries) GetPlayerStats(ctx context.Context, playerID int64) (PlayerStat, error) {
	row := q.db.QueryRowContext(ctx, getPlayerStats, playerID)
	return scanPlayerStat(row)
}

const upsertPlayerStats = `INSERT INTO player_stats (
    player_id, playfab_id, display_name, global_rank, level, kd_ratio, win_rate,
    hours_played, matches_played, kills, deaths, wins, losses, favorite_class, favorite_weapon,
    scrape_success, error_message, raw_data, source, last_updated, last_success_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
)
ON CONFLICT (player_id) DO UPDATE SET
    playfab_id = excluded.playfab_id,
    display_name = excluded.display_name,
    global_rank = excluded.global_rank,
    level = excluded.level,
    kd_ratio = excluded.kd_ratio,
    win_rate = excluded.win_rate,
    hours_played = excluded.hours_played,
    matches_played = excluded.matches_played,
    kills = excluded.kills,
    deaths = excluded.deaths,
    wins = excluded.wins,
    losses = excluded.losses,
    favorite_class = excluded.favorite_class,
    favorite_weapon = excluded.favorite_weapon,
    scrape_success = excluded.scrape_success,
    error_message = excluded.error_message,
    raw_data = excluded.raw_data,
    source = excluded.source,
    last_updated = excluded.last_updated,
    last_success_at = excluded.last_success_at`

type UpsertPlayerStatsParams struct {
	PlayerID       int64
	PlayfabID      sql.NullString
	DisplayName    sql.NullString
	GlobalRank     sql.NullInt64
	Level          sql.NullInt64
	KdRatio        sql.NullFloat64
	WinRate        sql.NullFloat64
	HoursPlayed    sql.NullFloat64
	MatchesPlayed  sql.NullInt64
	Kills          sql.NullInt64
	Deaths         sql.NullInt64
	Wins           sql.NullInt64
	Losses         sql.NullInt64
	FavoriteClass  sql.NullString
	FavoriteWeapon sql.NullString
	ScrapeSuccess  bool
	ErrorMessage   sql.NullString
	RawData        pqtype.NullRawMessage
	Source         string
	LastUpdated    time.Time
	LastSuccessAt  sql.NullTime
}

func (q *Queries) UpsertPlayerStats(ctx context.Context, arg UpsertPlayerStatsParams) error {
	_, err := q.db.ExecContext(ctx, upsertPlayerStats,
		arg.PlayerID,
		arg.PlayfabID,
		arg.DisplayName,
		arg.GlobalRank,
		arg.Level,
		arg.KdRatio,
		arg.WinRate,
		arg.HoursPlayed,
		arg.MatchesPlayed,
		arg.Kills,
		arg.Deaths,
		arg.Wins,
		arg.Losses,
		arg.FavoriteClass,
		arg.FavoriteWeapon,
		arg.ScrapeSuccess,
		arg.ErrorMessage,
		arg.RawData,
		arg.Source,
		arg.LastUpdated,
		arg.LastSuccessAt,
	)
	return err
}

// A failed attempt only touches the attempt metadata; stats and raw payload
// from the last success survive.
const recordPlayerStatsFailure = `INSERT INTO player_stats (
    player_id, scrape_success, error_message, source, last_updated
) VALUES (
    $1, $2, $3, $4, $5
)
ON CONFLICT (player_id) DO UPDATE SET
    scrape_success = excluded.scrape_success,
    error_message = excluded.error_message,
    source = excluded.source,
    last_updated = excluded.last_updated`

type RecordPlayerStatsFailureParams struct {
	PlayerID     int64
	ErrorMessage sql.NullString
	Source       string
	LastUpdated  time.Time
}

func (q *Queries) RecordPlayerStatsFailure(ctx context.Context, arg RecordPlayerStatsFailureParams) error {
	_, err := q.db.ExecContext(ctx, recordPlayerStatsFailure,
		arg.PlayerID,
		false,
		arg.ErrorMessage,
		arg.Source,
		arg.LastUpdated,
	)
	return err
}
