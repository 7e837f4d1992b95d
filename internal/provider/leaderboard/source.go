package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"tierlist/internal/domain"
	"tierlist/internal/provider"

	"github.com/rs/zerolog"
)

const Name = "leaderboard"

// statisticFields maps normalized statistic names to contract fields.
var statisticFields = map[string]string{
	"level":         provider.FieldLevel,
	"playerlevel":   provider.FieldLevel,
	"kills":         provider.FieldKills,
	"totalkills":    provider.FieldKills,
	"deaths":        provider.FieldDeaths,
	"totaldeaths":   provider.FieldDeaths,
	"wins":          provider.FieldWins,
	"matcheswon":    provider.FieldWins,
	"losses":        provider.FieldLosses,
	"matcheslost":   provider.FieldLosses,
	"matchesplayed": provider.FieldMatchesPlayed,
	"gamesplayed":   provider.FieldMatchesPlayed,
	"kdratio":       provider.FieldKDRatio,
	"winrate":       provider.FieldWinRate,
}

// playtime statistics are reported in seconds.
var playtimeStatistics = map[string]bool{
	"playtime":        true,
	"timeplayed":      true,
	"playtimeseconds": true,
}

type Source struct {
	client     *Client
	statistic  string
	maxResults int
	logger     zerolog.Logger
}

func NewSource(client *Client, statistic string, maxResults int, logger zerolog.Logger) *Source {
	return &Source{
		client:     client,
		statistic:  statistic,
		maxResults: maxResults,
		logger:     logger,
	}
}

func (s *Source) Name() string { return Name }

func (s *Source) FetchByID(ctx context.Context, providerID string) (*domain.StatsRecord, error) {
	resp, _, err := s.client.GetLeaderboardAroundPlayer(ctx, s.statistic, providerID)
	if err != nil {
		return nil, err
	}

	for _, entry := range resp.Data.Leaderboard {
		if entry.PlayFabID == providerID {
			return s.toRecord(entry), nil
		}
	}
	return nil, fmt.Errorf("provider id %s not on leaderboard %s: %w", providerID, s.statistic, domain.ErrNotFound)
}

func (s *Source) FetchByName(ctx context.Context, name string) (*domain.StatsRecord, error) {
	entries, err := s.matching(ctx, name)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, len(entries))
	for i, e := range entries {
		candidates[i] = toCandidate(e)
	}
	picked, err := provider.SelectCandidate(name, candidates)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.PlayFabID == picked.ProviderID {
			return s.toRecord(e), nil
		}
	}
	return nil, fmt.Errorf("selected candidate %s vanished: %w", picked.ProviderID, domain.ErrUpstream)
}

func (s *Source) Search(ctx context.Context, name string) ([]domain.Candidate, error) {
	entries, err := s.matching(ctx, name)
	if err != nil {
		return nil, err
	}
	candidates := make([]domain.Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, toCandidate(e))
	}
	return provider.Dedupe(candidates), nil
}

// matching returns leaderboard entries whose display name contains name.
// The endpoint has no name filter so the capped board is scanned locally.
func (s *Source) matching(ctx context.Context, name string) ([]LeaderboardEntry, error) {
	resp, _, err := s.client.GetLeaderboard(ctx, s.statistic, s.maxResults)
	if err != nil {
		return nil, err
	}

	want := provider.Normalize(name)
	var out []LeaderboardEntry
	for _, e := range resp.Data.Leaderboard {
		if strings.Contains(provider.Normalize(displayName(e)), want) {
			out = append(out, e)
		}
	}

	s.logger.Debug().
		Str("query", name).
		Int("board_size", len(resp.Data.Leaderboard)).
		Int("matches", len(out)).
		Msg("leaderboard name scan")
	return out, nil
}

func (s *Source) toRecord(e LeaderboardEntry) *domain.StatsRecord {
	fields := map[string]string{
		provider.FieldProviderID:  e.PlayFabID,
		provider.FieldDisplayName: displayName(e),
		provider.FieldGlobalRank:  strconv.Itoa(e.Position + 1),
	}
	if f, ok := statisticFields[normalizeStatistic(s.statistic)]; ok {
		fields[f] = formatFloat(e.StatValue)
	}
	if e.Profile != nil {
		for _, st := range e.Profile.Statistics {
			key := normalizeStatistic(st.Name)
			if playtimeStatistics[key] {
				fields[provider.FieldHoursPlayed] = formatFloat(st.Value / 3600)
				continue
			}
			if f, ok := statisticFields[key]; ok {
				fields[f] = formatFloat(st.Value)
			}
		}
	}

	raw, err := json.Marshal(e)
	if err != nil {
		raw = nil
	}
	return provider.RecordFromFields(Name, fields, raw)
}

func toCandidate(e LeaderboardEntry) domain.Candidate {
	return domain.Candidate{
		ProviderID:  e.PlayFabID,
		DisplayName: displayName(e),
	}
}

func displayName(e LeaderboardEntry) string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	if e.Profile != nil {
		return e.Profile.DisplayName
	}
	return ""
}

func normalizeStatistic(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
