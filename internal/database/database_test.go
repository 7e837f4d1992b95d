package database

import (
	"path/filepath"
	"strings"
	"testing"

	"tierlist/internal/config"

	"github.com/rs/zerolog"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dsn  string
		want Dialect
	}{
		{"postgres://u:p@localhost:5432/tier", Postgres},
		{"postgresql://localhost/tier", Postgres},
		{"tierlist.db", SQLite},
		{"file:/var/lib/tier.db?cache=shared", SQLite},
	}
	for _, tt := range tests {
		if got := DialectFor(tt.dsn); got != tt.want {
			t.Errorf("DialectFor(%q) = %s, want %s", tt.dsn, got, tt.want)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN("a.db"); got != "a.db?_foreign_keys=on&_busy_timeout=5000" {
		t.Errorf("sqliteDSN = %q", got)
	}
	if got := sqliteDSN("file:a.db?cache=shared"); !strings.HasPrefix(got, "file:a.db?cache=shared&") {
		t.Errorf("sqliteDSN = %q", got)
	}
}

func TestNewRunsMigrations(t *testing.T) {
	cfg := &config.Config{DatabaseURL: filepath.Join(t.TempDir(), "tier.db")}
	db, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"players", "player_stats", "nickname_history"} {
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}

	// Foreign keys are enforced on every pooled connection.
	_, err = db.Exec(`INSERT INTO player_stats (player_id, last_updated) VALUES (999, CURRENT_TIMESTAMP)`)
	if err == nil {
		t.Error("stats row accepted for a missing player")
	}

	// A tier outside 0-6 is rejected.
	if _, err := db.Exec(`INSERT INTO players (name, tier) VALUES ('x', 9)`); err == nil {
		t.Error("tier 9 accepted")
	}

	// Reopening is a no-op migration.
	db2, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	db2.Close()
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(&config.Config{}, zerolog.Nop()); err == nil {
		t.Error("expected an error for an empty DATABASE_URL")
	}
}

// Raw payloads are stored as opaque bytes in both dialects so reads return
// exactly what was written, key order and whitespace included.
func TestRawPayloadColumnIsOpaque(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"migrations/postgres/00001_init.sql", "BYTEA"},
		{"migrations/sqlite/00001_init.sql", "BLOB"},
	}
	for _, tt := range tests {
		data, err := embedMigrations.ReadFile(tt.file)
		if err != nil {
			t.Fatalf("read %s: %v", tt.file, err)
		}
		var got string
		for _, line := range strings.Split(string(data), "\n") {
			fields := strings.Fields(line)
			if len(fields) >= 2 && fields[0] == "raw_data" {
				got = strings.TrimSuffix(fields[1], ",")
			}
		}
		if got != tt.want {
			t.Errorf("%s: raw_data type = %q, want %q", tt.file, got, tt.want)
		}
	}
}
