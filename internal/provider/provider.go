// Package provider fetches player statistics from third-party services.
//
// Implementations never persist anything. They fail with domain.ErrNotFound
// when the upstream has no such player, domain.ErrUpstream or
// domain.ErrTimeout when the upstream could not answer, and
// *domain.AmbiguousError when a name matched several identities.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tierlist/internal/domain"

	"github.com/rs/zerolog"
)

type Source interface {
	Name() string
	FetchByName(ctx context.Context, name string) (*domain.StatsRecord, error)
	FetchByID(ctx context.Context, providerID string) (*domain.StatsRecord, error)
	Search(ctx context.Context, name string) ([]domain.Candidate, error)
}

// Chain tries its sources in order, moving on only when a source could not
// answer. A definite answer (a record, not found, ambiguous) ends the chain.
type Chain struct {
	sources []Source
	logger  zerolog.Logger
}

func NewChain(logger zerolog.Logger, sources ...Source) (*Chain, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no stats sources configured: %w", domain.ErrConfiguration)
	}
	return &Chain{sources: sources, logger: logger}, nil
}

func (c *Chain) Name() string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

func (c *Chain) FetchByName(ctx context.Context, name string) (*domain.StatsRecord, error) {
	return try(ctx, c, "fetch_by_name", func(s Source) (*domain.StatsRecord, error) {
		return s.FetchByName(ctx, name)
	})
}

func (c *Chain) FetchByID(ctx context.Context, providerID string) (*domain.StatsRecord, error) {
	return try(ctx, c, "fetch_by_id", func(s Source) (*domain.StatsRecord, error) {
		return s.FetchByID(ctx, providerID)
	})
}

func (c *Chain) Search(ctx context.Context, name string) ([]domain.Candidate, error) {
	return try(ctx, c, "search", func(s Source) ([]domain.Candidate, error) {
		return s.Search(ctx, name)
	})
}

func try[T any](ctx context.Context, c *Chain, op string, call func(Source) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for _, s := range c.sources {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return zero, fmt.Errorf("%s before %s: %w: %v", op, s.Name(), domain.ErrTimeout, err)
			}
			return zero, err
		}
		out, err := call(s)
		if err == nil {
			return out, nil
		}
		if !domain.IsRecoverable(err) {
			return zero, err
		}
		c.logger.Warn().Err(err).Str("source", s.Name()).Str("op", op).Msg("stats source failed, trying next")
		lastErr = err
	}
	return zero, lastErr
}

// Normalize folds a display name for comparison.
func Normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// SelectCandidate picks the identity a name search refers to without guessing:
// a single exact (normalized) match wins, otherwise a single hit wins.
func SelectCandidate(query string, candidates []domain.Candidate) (domain.Candidate, error) {
	candidates = Dedupe(candidates)

	want := Normalize(query)
	var exact []domain.Candidate
	for _, c := range candidates {
		if Normalize(c.DisplayName) == want {
			exact = append(exact, c)
		}
	}

	switch {
	case len(exact) == 1:
		return exact[0], nil
	case len(exact) > 1:
		return domain.Candidate{}, &domain.AmbiguousError{Query: query, Candidates: exact}
	case len(candidates) == 1:
		return candidates[0], nil
	case len(candidates) == 0:
		return domain.Candidate{}, fmt.Errorf("no player named %q: %w", query, domain.ErrNotFound)
	default:
		return domain.Candidate{}, &domain.AmbiguousError{Query: query, Candidates: candidates}
	}
}

// Dedupe drops repeated provider ids, keeping the first occurrence.
func Dedupe(candidates []domain.Candidate) []domain.Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ProviderID == "" || seen[c.ProviderID] {
			continue
		}
		seen[c.ProviderID] = true
		out = append(out, c)
	}
	return out
}
