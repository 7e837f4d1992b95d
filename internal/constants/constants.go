package constants

import "time"

const (
	// StatsFreshness is how long a cache entry is served without refetching.
	StatsFreshness = 24 * time.Hour
)

const (
	ScrapePageLoadTimeout  = 8 * time.Second
	ScrapeResultTimeout    = 5 * time.Second
	ScrapeHardTimeout      = 15 * time.Second
	ExternalAPITimeout     = 10 * time.Second
	DatabaseTimeout        = 5 * time.Second
	RequestTimeout         = 30 * time.Second
	CacheWriteTimeout      = 3 * time.Second
	LeaderboardReadTimeout = 10 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	LeaderboardDefaultMaxResults = 100
	SearchCandidateLimit         = 25
	NicknameHistoryLimit         = 50

	// NameSimilarityDistance is the largest Levenshtein distance reported as a
	// possible duplicate of an existing tier-list name.
	NameSimilarityDistance = 2
)

const (
	MinTier = 0
	MaxTier = 6
)
