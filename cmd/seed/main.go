package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"

	"tierlist/internal/config"
	"tierlist/internal/constants"
	"tierlist/internal/database"
	"tierlist/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedPlayer mirrors one entry of the players JSON snapshot.
type SeedPlayer struct {
	Name      string  `json:"name"`
	Tier      int     `json:"tier"`
	PlayfabID *string `json:"playfab_id"`
}

func main() {
	path := flag.String("file", "players.json", "players JSON snapshot")
	flag.Parse()

	log := logger.New()

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("read JSON")
	}
	var players []SeedPlayer
	if err := json.Unmarshal(data, &players); err != nil {
		log.Fatal().Err(err).Msg("unmarshal JSON")
	}

	dsn := os.Getenv("DATABASE_URL")
	if database.DialectFor(dsn) != database.Postgres {
		log.Fatal().Msg("DATABASE_URL must be a postgres URL")
	}

	// Apply migrations through the server's own path before inserting.
	sqlDB, err := database.New(&config.Config{DatabaseURL: dsn}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}
	_ = sqlDB.Close()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer pool.Close()

	var inserted, skipped, errs int
	for _, p := range players {
		name := strings.TrimSpace(p.Name)
		if name == "" || p.Tier < constants.MinTier || p.Tier > constants.MaxTier {
			log.Warn().Str("name", p.Name).Int("tier", p.Tier).Msg("skipping invalid player")
			errs++
			continue
		}

		tag, err := pool.Exec(ctx, `
			INSERT INTO players (name, tier, playfab_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING
		`, name, p.Tier, p.PlayfabID)
		if err != nil {
			log.Error().Err(err).Str("name", name).Msg("error inserting player")
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	log.Info().
		Int("total", len(players)).
		Int("inserted", inserted).
		Int("skipped", skipped).
		Int("errors", errs).
		Msg("players seed complete")
}
