package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tierlist/internal/constants"
	"tierlist/internal/domain"
	"tierlist/internal/provider"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type PlayerStore interface {
	Get(ctx context.Context, id int64) (*domain.Player, error)
	SetProviderID(ctx context.Context, id int64, providerID *string) error
	ListNames(ctx context.Context) ([]domain.Player, error)
}

type NicknameHistory interface {
	List(ctx context.Context, playerID int64, limit int) ([]domain.NicknameChange, error)
}

// SimilarName warns that a searched name is close to one already on the list.
// It is informational only and never used to pick an identity.
type SimilarName struct {
	PlayerID int64
	Name     string
	Distance int
}

type SearchResult struct {
	Query      string
	Candidates []domain.Candidate
	Similar    []SimilarName
}

// IdentityService links tier-list players to provider ids. Callers are
// expected to have checked admin privileges for Assign and Unassign.
type IdentityService struct {
	players   PlayerStore
	nicknames NicknameHistory
	source    provider.Source
	logger    zerolog.Logger
}

func NewIdentityService(players PlayerStore, nicknames NicknameHistory, source provider.Source, logger zerolog.Logger) *IdentityService {
	return &IdentityService{players: players, nicknames: nicknames, source: source, logger: logger}
}

func (s *IdentityService) Assign(ctx context.Context, playerID int64, providerID string) error {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return fmt.Errorf("provider id must not be empty: %w", domain.ErrInvalidInput)
	}
	if err := s.players.SetProviderID(ctx, playerID, &providerID); err != nil {
		return err
	}
	s.logger.Info().Int64("player_id", playerID).Str("provider_id", providerID).Msg("identity linked")
	return nil
}

func (s *IdentityService) Unassign(ctx context.Context, playerID int64) error {
	if err := s.players.SetProviderID(ctx, playerID, nil); err != nil {
		return err
	}
	s.logger.Info().Int64("player_id", playerID).Msg("identity unlinked")
	return nil
}

// Link assigns providerID, or clears the link when it is nil or blank.
func (s *IdentityService) Link(ctx context.Context, playerID int64, providerID *string) (*domain.Player, error) {
	var err error
	if providerID == nil || strings.TrimSpace(*providerID) == "" {
		err = s.Unassign(ctx, playerID)
	} else {
		err = s.Assign(ctx, playerID, *providerID)
	}
	if err != nil {
		return nil, err
	}
	return s.players.Get(ctx, playerID)
}

// SearchCandidates lists provider identities for name so a human can pick
// one before calling Assign. Nothing is persisted.
func (s *IdentityService) SearchCandidates(ctx context.Context, name string) (*SearchResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name must not be empty: %w", domain.ErrInvalidInput)
	}

	var candidates []domain.Candidate
	var players []domain.Player

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = s.source.Search(gCtx, name)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.players.ListNames(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Str("query", name).Msg("candidate search failed")
		return nil, err
	}

	return &SearchResult{
		Query:      name,
		Candidates: candidates,
		Similar:    SimilarNames(name, players, constants.NameSimilarityDistance),
	}, nil
}

func (s *IdentityService) Nicknames(ctx context.Context, playerID int64) ([]domain.NicknameChange, error) {
	if _, err := s.players.Get(ctx, playerID); err != nil {
		return nil, err
	}
	return s.nicknames.List(ctx, playerID, constants.NicknameHistoryLimit)
}

// SimilarNames returns tier-list players whose normalized name is within
// maxDistance edits of name, closest first.
func SimilarNames(name string, players []domain.Player, maxDistance int) []SimilarName {
	want := provider.Normalize(name)
	var out []SimilarName
	for _, p := range players {
		d := levenshtein.ComputeDistance(want, provider.Normalize(p.Name))
		if d <= maxDistance {
			out = append(out, SimilarName{PlayerID: p.ID, Name: p.Name, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Name < out[j].Name
	})
	return out
}
