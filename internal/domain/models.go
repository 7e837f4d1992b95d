package domain

import (
	"encoding/json"
	"time"
)

// StatsRecord is one player's third-party statistics snapshot. Every stat is
// optional because upstream data is unstructured and any field may be absent.
type StatsRecord struct {
	PlayerID    int64
	ProviderID  *string
	DisplayName *string

	GlobalRank     *int
	Level          *int
	KDRatio        *float64
	WinRate        *float64
	HoursPlayed    *float64
	MatchesPlayed  *int
	Kills          *int
	Deaths         *int
	Wins           *int
	Losses         *int
	FavoriteClass  *string
	FavoriteWeapon *string

	RawPayload    json.RawMessage
	Source        string
	FetchSuccess  bool
	ErrorMessage  *string
	LastUpdated   time.Time
	LastSuccessAt *time.Time
}

// HasStats reports whether the record carries data from a successful fetch.
func (r *StatsRecord) HasStats() bool {
	return r != nil && r.LastSuccessAt != nil
}

// Derive fills K/D and win rate from raw counters when the provider did not
// report them.
func (r *StatsRecord) Derive() {
	if r.KDRatio == nil && r.Kills != nil && r.Deaths != nil {
		kd := float64(*r.Kills)
		if *r.Deaths > 0 {
			kd = float64(*r.Kills) / float64(*r.Deaths)
		}
		r.KDRatio = &kd
	}
	if r.WinRate == nil && r.Wins != nil && r.Losses != nil && *r.Wins+*r.Losses > 0 {
		wr := float64(*r.Wins) / float64(*r.Wins+*r.Losses) * 100
		r.WinRate = &wr
	}
	if r.MatchesPlayed == nil && r.Wins != nil && r.Losses != nil {
		m := *r.Wins + *r.Losses
		r.MatchesPlayed = &m
	}
}

// CacheEntry is the persisted StatsRecord for one tier-list player.
type CacheEntry struct {
	StatsRecord
}

// HasStats is safe on a nil entry, which stands for a cache miss.
func (e *CacheEntry) HasStats() bool {
	return e != nil && e.StatsRecord.HasStats()
}

// Age returns how long ago the entry was last written.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.LastUpdated)
}

// IsStale reports whether the entry is older than the freshness window.
// Staleness is binary and measured from the last fetch attempt.
func IsStale(entry *CacheEntry, now time.Time, freshness time.Duration) bool {
	return entry.Age(now) > freshness
}

// Profile is the resolver's answer to a profile request.
type Profile struct {
	StatsRecord
	FromCache bool
	// CacheAge is set only for fresh cache hits.
	CacheAge *time.Duration
	Stale    bool
	Error    string
}

// Candidate is one name-search hit awaiting human disambiguation.
type Candidate struct {
	ProviderID  string
	DisplayName string
	LookupCount int
	Aliases     []string
}

// Player is the slice of the tier-list player record this service touches.
type Player struct {
	ID         int64
	Name       string
	Tier       int
	ProviderID *string
	UpdatedAt  time.Time
}

// NicknameChange is one observed display name for a player.
type NicknameChange struct {
	ID       string
	PlayerID int64
	Nickname string
	SeenAt   time.Time
}
