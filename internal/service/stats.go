package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tierlist/internal/config"
	"tierlist/internal/constants"
	"tierlist/internal/domain"
	"tierlist/internal/provider"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// StatsCache is the durable per-player stats store.
type StatsCache interface {
	Get(ctx context.Context, playerID int64) (*domain.CacheEntry, error)
	Upsert(ctx context.Context, playerID int64, record *domain.StatsRecord) (*domain.CacheEntry, error)
	RecordFailure(ctx context.Context, playerID int64, source string, fetchErr error) (*domain.CacheEntry, error)
}

// IdentityLinks resolves the provider id linked to a tier-list player.
type IdentityLinks interface {
	ProviderID(ctx context.Context, playerID int64) (*string, error)
}

type NicknameRecorder interface {
	Observe(ctx context.Context, playerID int64, nickname string) (bool, error)
}

type ProfileRequest struct {
	PlayerID     int64
	PlayerName   string
	ForceRefresh bool
}

// StatsService resolves player profiles through the fallback chain
// cache -> fresh fetch -> stale cache -> error.
type StatsService struct {
	cache     StatsCache
	links     IdentityLinks
	nicknames NicknameRecorder
	source    provider.Source
	clock     clockwork.Clock
	freshness time.Duration
	logger    zerolog.Logger
}

func NewStatsService(
	cache StatsCache,
	links IdentityLinks,
	nicknames NicknameRecorder,
	source provider.Source,
	clock clockwork.Clock,
	cfg *config.Config,
	logger zerolog.Logger,
) *StatsService {
	freshness := cfg.StatsFreshness
	if freshness <= 0 {
		freshness = constants.StatsFreshness
	}
	return &StatsService{
		cache:     cache,
		links:     links,
		nicknames: nicknames,
		source:    source,
		clock:     clock,
		freshness: freshness,
		logger:    logger,
	}
}

func (s *StatsService) Resolve(ctx context.Context, req ProfileRequest) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	log := s.log(ctx).With().
		Int64("player_id", req.PlayerID).
		Str("player_name", req.PlayerName).
		Bool("force_refresh", req.ForceRefresh).
		Logger()

	// Read before fetching: this snapshot alone decides the fallback.
	entry, err := s.cache.Get(ctx, req.PlayerID)
	if err != nil {
		log.Error().Err(err).Msg("stats cache unavailable")
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	now := s.clock.Now()
	if entry != nil && !req.ForceRefresh && !domain.IsStale(entry, now, s.freshness) {
		age := entry.Age(now)
		profile := &domain.Profile{StatsRecord: entry.StatsRecord, FromCache: true, CacheAge: &age}
		if !entry.FetchSuccess && entry.ErrorMessage != nil {
			// The last attempt failed recently; wait out the window before retrying.
			profile.Error = *entry.ErrorMessage
		}
		log.Info().Dur("cache_age", age).Bool("fetch_success", entry.FetchSuccess).Msg("returning cached stats")
		return profile, nil
	}

	record, err := s.fetch(ctx, req)
	if err != nil {
		return s.fallback(ctx, log, req, entry, err)
	}
	record.PlayerID = req.PlayerID

	writeCtx, writeCancel := s.writeContext(ctx)
	defer writeCancel()

	stored, err := s.cache.Upsert(writeCtx, req.PlayerID, record)
	if err != nil {
		log.Warn().Err(err).Msg("failed to cache fresh stats, returning them anyway")
		record.FetchSuccess = true
		record.ErrorMessage = nil
		record.LastUpdated = now
		record.LastSuccessAt = &now
	} else {
		record = &stored.StatsRecord
	}

	if record.DisplayName != nil && s.nicknames != nil {
		if _, err := s.nicknames.Observe(writeCtx, req.PlayerID, *record.DisplayName); err != nil {
			log.Warn().Err(err).Msg("failed to record nickname")
		}
	}

	log.Info().Str("source", record.Source).Msg("stats fetched")
	return &domain.Profile{StatsRecord: *record}, nil
}

// fetch asks the source by provider id when the player is linked, by name otherwise.
func (s *StatsService) fetch(ctx context.Context, req ProfileRequest) (*domain.StatsRecord, error) {
	providerID, err := s.links.ProviderID(ctx, req.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	if providerID != nil && strings.TrimSpace(*providerID) != "" {
		return s.source.FetchByID(ctx, *providerID)
	}
	if strings.TrimSpace(req.PlayerName) == "" {
		return nil, fmt.Errorf("player %d has no provider id and no name: %w", req.PlayerID, domain.ErrInvalidInput)
	}
	return s.source.FetchByName(ctx, req.PlayerName)
}

func (s *StatsService) fallback(ctx context.Context, log zerolog.Logger, req ProfileRequest, entry *domain.CacheEntry, fetchErr error) (*domain.Profile, error) {
	if amb, ok := domain.AsAmbiguous(fetchErr); ok {
		log.Info().Int("candidates", len(amb.Candidates)).Msg("name search needs disambiguation")
		return nil, amb
	}
	if errors.Is(fetchErr, domain.ErrConfiguration) || errors.Is(fetchErr, domain.ErrInvalidInput) {
		log.Error().Err(fetchErr).Msg("stats fetch not attempted")
		return nil, fetchErr
	}
	if ctx.Err() != nil && !errors.Is(fetchErr, domain.ErrTimeout) {
		log.Warn().Err(fetchErr).Msg("request ended during stats fetch")
		return nil, fetchErr
	}

	writeCtx, cancel := s.writeContext(ctx)
	defer cancel()
	if _, err := s.cache.RecordFailure(writeCtx, req.PlayerID, s.source.Name(), fetchErr); err != nil {
		log.Warn().Err(err).Msg("failed to record fetch failure")
	}

	if entry.HasStats() && (domain.IsRecoverable(fetchErr) || errors.Is(fetchErr, domain.ErrNotFound)) {
		log.Warn().Err(fetchErr).Str("kind", domain.Kind(fetchErr)).Msg("serving stale stats")
		return &domain.Profile{
			StatsRecord: entry.StatsRecord,
			FromCache:   true,
			Stale:       true,
			Error:       fetchErr.Error(),
		}, nil
	}

	log.Error().Err(fetchErr).Str("kind", domain.Kind(fetchErr)).Msg("stats fetch failed with nothing cached")
	return nil, fetchErr
}

// writeContext detaches cache writes from the request so an attempt that
// already happened is still recorded after the client hangs up.
func (s *StatsService) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), constants.CacheWriteTimeout)
}

func (s *StatsService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}
