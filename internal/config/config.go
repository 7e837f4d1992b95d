package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tierlist/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DatabaseURL   string
	ServerPort    string
	LogLevel      string
	AdminPassword string

	// StatsProviders is the order in which stats sources are tried.
	StatsProviders []string
	StatsFreshness time.Duration

	ScrapeConfigPath string
	ChromePath       string

	LeaderboardBaseURL    string
	PlayFabTitleID        string
	LeaderboardStatistic  string
	LeaderboardMaxResults int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DatabaseURL:           getEnv("DATABASE_URL", "tierlist.db"),
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		StatsProviders:        splitList(getEnv("STATS_PROVIDERS", "scrape")),
		StatsFreshness:        constants.StatsFreshness,
		ScrapeConfigPath:      getEnv("SCRAPE_CONFIG", ""),
		ChromePath:            getEnv("CHROME_PATH", ""),
		LeaderboardBaseURL:    getEnv("LEADERBOARD_BASE_URL", ""),
		PlayFabTitleID:        getEnv("PLAYFAB_TITLE_ID", ""),
		LeaderboardStatistic:  getEnv("LEADERBOARD_STATISTIC", "XP"),
		LeaderboardMaxResults: getEnvAsInt("LEADERBOARD_MAX_RESULTS", constants.LeaderboardDefaultMaxResults),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Strs("stats_providers", cfg.StatsProviders).
		Dur("stats_freshness", cfg.StatsFreshness).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if len(c.StatsProviders) == 0 {
		return fmt.Errorf("STATS_PROVIDERS must name at least one provider")
	}
	for _, p := range c.StatsProviders {
		switch p {
		case "scrape", "leaderboard":
		default:
			return fmt.Errorf("unknown stats provider %q", p)
		}
	}
	if c.UsesProvider("leaderboard") && c.PlayFabTitleID == "" {
		return fmt.Errorf("PLAYFAB_TITLE_ID is required when the leaderboard provider is enabled")
	}
	if c.LeaderboardMaxResults <= 0 {
		return fmt.Errorf("LEADERBOARD_MAX_RESULTS must be positive")
	}
	return nil
}

// UsesProvider reports whether name is one of the configured providers.
func (c *Config) UsesProvider(name string) bool {
	for _, p := range c.StatsProviders {
		if p == name {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var Module = fx.Provide(Load)
