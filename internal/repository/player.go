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

// PlayerRepository reads tier-list players and owns their provider id link.
type PlayerRepository struct {
	queries *db.Queries
	clock   clockwork.Clock
	logger  zerolog.Logger
}

func NewPlayerRepository(queries *db.Queries, clock clockwork.Clock, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		clock:   clock,
		logger:  logger,
	}
}

func (r *PlayerRepository) Get(ctx context.Context, id int64) (*domain.Player, error) {
	p, err := r.queries.GetPlayer(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}

	return &domain.Player{
		ID:         p.ID,
		Name:       p.Name,
		Tier:       int(p.Tier),
		ProviderID: sqlutil.FromNullString(p.PlayfabID),
		UpdatedAt:  p.UpdatedAt,
	}, nil
}

// ProviderID returns the linked provider id, or nil when the player is
// unknown or unlinked.
func (r *PlayerRepository) ProviderID(ctx context.Context, id int64) (*string, error) {
	p, err := r.queries.GetPlayer(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity link: %w", err)
	}
	return sqlutil.FromNullString(p.PlayfabID), nil
}

// SetProviderID overwrites the link; nil clears it.
func (r *PlayerRepository) SetProviderID(ctx context.Context, id int64, providerID *string) error {
	n, err := r.queries.UpdatePlayerPlayfabID(ctx, db.UpdatePlayerPlayfabIDParams{
		PlayfabID: sqlutil.ToNullString(providerID),
		UpdatedAt: r.clock.Now(),
		ID:        id,
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("player_id", id).Msg("failed to update identity link")
		return fmt.Errorf("failed to update identity link: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("player %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PlayerRepository) ListNames(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.queries.ListPlayerNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	players := make([]domain.Player, len(rows))
	for i, row := range rows {
		players[i] = domain.Player{ID: row.ID, Name: row.Name}
	}
	return players, nil
}
