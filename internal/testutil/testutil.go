// Package testutil opens throwaway databases migrated the same way the
// server migrates its own.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"tierlist/internal/config"
	"tierlist/internal/database"
	"tierlist/internal/db"

	"github.com/rs/zerolog"
)

// NewDB returns a migrated sqlite database under t.TempDir, closed on cleanup.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := &config.Config{DatabaseURL: filepath.Join(t.TempDir(), "test.db")}
	sqlDB, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

// NewQueries is NewDB wrapped in generated queries.
func NewQueries(t *testing.T) (*sql.DB, *db.Queries) {
	t.Helper()
	sqlDB := NewDB(t)
	return sqlDB, db.New(sqlDB)
}

// InsertPlayer adds a tier-list player and returns its id.
func InsertPlayer(t *testing.T, sqlDB *sql.DB, name string, tier int, playfabID *string) int64 {
	t.Helper()

	var id int64
	err := sqlDB.QueryRow(
		`INSERT INTO players (name, tier, playfab_id) VALUES ($1, $2, $3) RETURNING id`,
		name, tier, playfabID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert player %q: %v", name, err)
	}
	return id
}

func Ptr[T any](v T) *T { return &v }
