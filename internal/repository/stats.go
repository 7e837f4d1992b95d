package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tierlist/internal/db"
	"tierlist/internal/domain"
	"tierlist/internal/sqlutil"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// StatsRepository is the durable stats cache, one row per tier-list player.
type StatsRepository struct {
	db      *sql.DB
	queries *db.Queries
	clock   clockwork.Clock
	logger  zerolog.Logger
}

func NewStatsRepository(sqlDB *sql.DB, queries *db.Queries, clock clockwork.Clock, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{
		db:      sqlDB,
		queries: queries,
		clock:   clock,
		logger:  logger,
	}
}

// Get returns the cached entry for playerID, or nil when nothing was ever recorded.
func (r *StatsRepository) Get(ctx context.Context, playerID int64) (*domain.CacheEntry, error) {
	row, err := r.queries.GetPlayerStats(ctx, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Int64("player_id", playerID).Msg("no cached stats")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached stats: %w", err)
	}
	return toCacheEntry(row), nil
}

// Upsert stores the result of a successful fetch, replacing every stat column.
func (r *StatsRepository) Upsert(ctx context.Context, playerID int64, record *domain.StatsRecord) (*domain.CacheEntry, error) {
	now := r.clock.Now()
	params := db.UpsertPlayerStatsParams{
		PlayerID:       playerID,
		PlayfabID:      sqlutil.ToNullString(record.ProviderID),
		DisplayName:    sqlutil.ToNullString(record.DisplayName),
		GlobalRank:     sqlutil.ToNullInt64(record.GlobalRank),
		Level:          sqlutil.ToNullInt64(record.Level),
		KdRatio:        sqlutil.ToNullFloat64(record.KDRatio),
		WinRate:        sqlutil.ToNullFloat64(record.WinRate),
		HoursPlayed:    sqlutil.ToNullFloat64(record.HoursPlayed),
		MatchesPlayed:  sqlutil.ToNullInt64(record.MatchesPlayed),
		Kills:          sqlutil.ToNullInt64(record.Kills),
		Deaths:         sqlutil.ToNullInt64(record.Deaths),
		Wins:           sqlutil.ToNullInt64(record.Wins),
		Losses:         sqlutil.ToNullInt64(record.Losses),
		FavoriteClass:  sqlutil.ToNullString(record.FavoriteClass),
		FavoriteWeapon: sqlutil.ToNullString(record.FavoriteWeapon),
		ScrapeSuccess:  true,
		RawData:        sqlutil.ToNullRawMessage(record.RawPayload),
		Source:         record.Source,
		LastUpdated:    now,
		LastSuccessAt:  sqlutil.ToNullTime(&now),
	}

	entry, err := r.writeThenRead(ctx, playerID, func(q *db.Queries) error {
		return q.UpsertPlayerStats(ctx, params)
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("player_id", playerID).Msg("failed to upsert stats")
		return nil, fmt.Errorf("failed to upsert stats: %w", err)
	}
	return entry, nil
}

// RecordFailure stores a failed fetch attempt. Stats from an earlier success
// are left untouched so a failure never replaces good data with nulls.
func (r *StatsRepository) RecordFailure(ctx context.Context, playerID int64, source string, fetchErr error) (*domain.CacheEntry, error) {
	msg := fetchErr.Error()
	params := db.RecordPlayerStatsFailureParams{
		PlayerID:     playerID,
		ErrorMessage: sqlutil.ToNullString(&msg),
		Source:       source,
		LastUpdated:  r.clock.Now(),
	}

	entry, err := r.writeThenRead(ctx, playerID, func(q *db.Queries) error {
		return q.RecordPlayerStatsFailure(ctx, params)
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("player_id", playerID).Msg("failed to record fetch failure")
		return nil, fmt.Errorf("failed to record fetch failure: %w", err)
	}
	return entry, nil
}

// writeThenRead applies write and reads the resulting row in one transaction.
func (r *StatsRepository) writeThenRead(ctx context.Context, playerID int64, write func(*db.Queries) error) (*domain.CacheEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := write(q); err != nil {
		return nil, err
	}
	row, err := q.GetPlayerStats(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return toCacheEntry(row), nil
}

func toCacheEntry(row db.PlayerStat) *domain.CacheEntry {
	return &domain.CacheEntry{StatsRecord: domain.StatsRecord{
		PlayerID:       row.PlayerID,
		ProviderID:     sqlutil.FromNullString(row.PlayfabID),
		DisplayName:    sqlutil.FromNullString(row.DisplayName),
		GlobalRank:     sqlutil.FromNullInt64(row.GlobalRank),
		Level:          sqlutil.FromNullInt64(row.Level),
		KDRatio:        sqlutil.FromNullFloat64(row.KdRatio),
		WinRate:        sqlutil.FromNullFloat64(row.WinRate),
		HoursPlayed:    sqlutil.FromNullFloat64(row.HoursPlayed),
		MatchesPlayed:  sqlutil.FromNullInt64(row.MatchesPlayed),
		Kills:          sqlutil.FromNullInt64(row.Kills),
		Deaths:         sqlutil.FromNullInt64(row.Deaths),
		Wins:           sqlutil.FromNullInt64(row.Wins),
		Losses:         sqlutil.FromNullInt64(row.Losses),
		FavoriteClass:  sqlutil.FromNullString(row.FavoriteClass),
		FavoriteWeapon: sqlutil.FromNullString(row.FavoriteWeapon),
		RawPayload:     sqlutil.FromNullRawMessage(row.RawData),
		Source:         row.Source,
		FetchSuccess:   row.ScrapeSuccess,
		ErrorMessage:   sqlutil.FromNullString(row.ErrorMessage),
		LastUpdated:    row.LastUpdated,
		LastSuccessAt:  sqlutil.FromNullTime(row.LastSuccessAt),
	}}
}
