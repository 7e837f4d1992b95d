package db

import (
	"database/sql"
	"time"

	"github.com/sqlc-dev/pqtype"
)

type Player struct {
	ID        int64
	Name      string
	Tier      int64
	PlayfabID sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PlayerStat struct {
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

type NicknameHistory struct {
	ID       string
	PlayerID int64
	Nickname string
	SeenAt   time.Time
}
