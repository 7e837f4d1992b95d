package scrape

import (
	"context"
	"fmt"
	"net/url"

	"tierlist/internal/constants"
	"tierlist/internal/domain"
	"tierlist/internal/provider"

	"github.com/rs/zerolog"
)

const Name = "scrape"

// Source reads stats from a site without a public API by rendering it in a
// browser and matching on-page labels.
type Source struct {
	browser Browser
	cfg     *Config
	logger  zerolog.Logger
}

func NewSource(browser Browser, cfg *Config, logger zerolog.Logger) *Source {
	return &Source{browser: browser, cfg: cfg, logger: logger}
}

func (s *Source) Name() string { return Name }

func (s *Source) Search(ctx context.Context, name string) ([]domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ScrapeHardTimeout)
	defer cancel()

	ready := s.cfg.Search.Results
	if s.cfg.Search.Empty != "" {
		ready += ", " + s.cfg.Search.Empty
	}

	html, err := s.browser.Search(ctx, SearchPage{
		URL:   s.cfg.Search.URL,
		Input: s.cfg.Search.Input,
		Query: name,
		Ready: ready,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("query", name).Msg("search page failed")
		return nil, err
	}

	candidates, err := ParseSearchResults(html, s.cfg.Search)
	if err != nil {
		return nil, err
	}
	candidates = provider.Dedupe(candidates)
	if len(candidates) > constants.SearchCandidateLimit {
		candidates = candidates[:constants.SearchCandidateLimit]
	}

	s.logger.Debug().Str("query", name).Int("candidates", len(candidates)).Msg("search page parsed")
	return candidates, nil
}

func (s *Source) FetchByName(ctx context.Context, name string) (*domain.StatsRecord, error) {
	candidates, err := s.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	picked, err := provider.SelectCandidate(name, candidates)
	if err != nil {
		return nil, err
	}

	record, err := s.FetchByID(ctx, picked.ProviderID)
	if err != nil {
		return nil, err
	}
	if record.DisplayName == nil && picked.DisplayName != "" {
		record.DisplayName = &picked.DisplayName
	}
	return record, nil
}

func (s *Source) FetchByID(ctx context.Context, providerID string) (*domain.StatsRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ScrapeHardTimeout)
	defer cancel()

	ready := s.cfg.Profile.Ready
	if s.cfg.Profile.NotFound != "" {
		ready += ", " + s.cfg.Profile.NotFound
	}

	html, err := s.browser.Render(ctx, s.cfg.ProfileURL(url.PathEscape(providerID)), ready)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider_id", providerID).Msg("profile page failed")
		return nil, err
	}

	fields, notFound, err := ExtractFields(html, s.cfg)
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, fmt.Errorf("no profile for %s: %w", providerID, domain.ErrNotFound)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no recognizable stats on profile page for %s: %w", providerID, domain.ErrUpstream)
	}

	fields[provider.FieldProviderID] = providerID
	s.logger.Debug().Str("provider_id", providerID).Int("fields", len(fields)).Msg("profile page parsed")
	return provider.RecordFromFields(Name, fields, nil), nil
}
