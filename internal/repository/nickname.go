package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tierlist/internal/db"
	"tierlist/internal/domain"

	"github.com/jonboulle/clockwork"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type NicknameRepository struct {
	queries *db.Queries
	clock   clockwork.Clock
	logger  zerolog.Logger
}

func NewNicknameRepository(queries *db.Queries, clock clockwork.Clock, logger zerolog.Logger) *NicknameRepository {
	return &NicknameRepository{
		queries: queries,
		clock:   clock,
		logger:  logger,
	}
}

// Observe records nickname for the player unless it is already the latest
// entry. It reports whether a row was written.
func (r *NicknameRepository) Observe(ctx context.Context, playerID int64, nickname string) (bool, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return false, nil
	}

	latest, err := r.queries.GetLatestNickname(ctx, playerID)
	switch {
	case err == nil && latest.Nickname == nickname:
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("failed to read latest nickname: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return false, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	if err := r.queries.InsertNickname(ctx, db.InsertNicknameParams{
		ID:       id,
		PlayerID: playerID,
		Nickname: nickname,
		SeenAt:   r.clock.Now(),
	}); err != nil {
		return false, fmt.Errorf("failed to insert nickname: %w", err)
	}

	r.logger.Debug().Int64("player_id", playerID).Str("nickname", nickname).Msg("nickname change recorded")
	return true, nil
}

func (r *NicknameRepository) List(ctx context.Context, playerID int64, limit int) ([]domain.NicknameChange, error) {
	rows, err := r.queries.ListNicknames(ctx, db.ListNicknamesParams{
		PlayerID: playerID,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list nicknames: %w", err)
	}

	result := make([]domain.NicknameChange, len(rows))
	for i, row := range rows {
		result[i] = domain.NicknameChange{
			ID:       row.ID,
			PlayerID: row.PlayerID,
			Nickname: row.Nickname,
			SeenAt:   row.SeenAt,
		}
	}
	return result, nil
}
