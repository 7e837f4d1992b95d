package fx

import (
	"context"
	"database/sql"
	"fmt"

	"tierlist/internal/config"
	"tierlist/internal/database"
	"tierlist/internal/db"
	"tierlist/internal/domain"
	"tierlist/internal/logger"
	"tierlist/internal/provider"
	"tierlist/internal/provider/leaderboard"
	"tierlist/internal/provider/scrape"
	"tierlist/internal/repository"
	"tierlist/internal/server"
	"tierlist/internal/service"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

// ProvideSource builds the configured stats sources in STATS_PROVIDERS order.
func ProvideSource(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (provider.Source, error) {
	var sources []provider.Source
	for _, name := range cfg.StatsProviders {
		switch name {
		case scrape.Name:
			scrapeCfg, err := scrape.LoadConfig(cfg.ScrapeConfigPath)
			if err != nil {
				return nil, err
			}
			browser := scrape.NewChromeBrowser(cfg.ChromePath, logger)
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					browser.Close()
					return nil
				},
			})
			sources = append(sources, scrape.NewSource(browser, scrapeCfg, logger))
		case leaderboard.Name:
			client, err := leaderboard.NewClient(leaderboard.ClientConfig{
				BaseURL: cfg.LeaderboardBaseURL,
				TitleID: cfg.PlayFabTitleID,
			})
			if err != nil {
				return nil, err
			}
			sources = append(sources, leaderboard.NewSource(client, cfg.LeaderboardStatistic, cfg.LeaderboardMaxResults, logger))
		default:
			return nil, fmt.Errorf("unknown stats provider %q: %w", name, domain.ErrConfiguration)
		}
	}

	chain, err := provider.NewChain(logger, sources...)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("providers", chain.Name()).Msg("stats sources ready")
	return chain, nil
}

func ProvideStatsService(
	stats *repository.StatsRepository,
	players *repository.PlayerRepository,
	nicknames *repository.NicknameRepository,
	source provider.Source,
	clock clockwork.Clock,
	cfg *config.Config,
	logger zerolog.Logger,
) *service.StatsService {
	return service.NewStatsService(stats, players, nicknames, source, clock, cfg, logger)
}

func ProvideIdentityService(
	players *repository.PlayerRepository,
	nicknames *repository.NicknameRepository,
	source provider.Source,
	logger zerolog.Logger,
) *service.IdentityService {
	return service.NewIdentityService(players, nicknames, source, logger)
}

func ProvideTrackerServer(stats *service.StatsService, identity *service.IdentityService, logger zerolog.Logger) *server.TrackerServer {
	return server.NewTrackerServer(stats, identity, logger)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(ProvideClock),
	// repos
	fx.Provide(repository.NewStatsRepository),
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewNicknameRepository),
	// stats sources
	fx.Provide(ProvideSource),
	// svc
	fx.Provide(ProvideStatsService),
	fx.Provide(ProvideIdentityService),
	// server
	fx.Provide(ProvideTrackerServer),
)
