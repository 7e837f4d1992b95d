package scrape

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tierlist/internal/domain"
)

func TestLoadConfigDefault(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.ProfileURL("ABC123"); got != "https://chivalry2stats.com/player/ABC123" {
		t.Errorf("ProfileURL = %q", got)
	}
	if field := cfg.labelIndex()["k/d ratio"]; field != "kd_ratio" {
		t.Errorf("label k/d ratio maps to %q", field)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrape.yaml")
	body := `
search:
  url: https://example.test/
  input: "#q"
  results: "#results"
  item: li
  id_attr: data-id
profile:
  url: https://example.test/p/{id}
  ready: main
labels:
  kills: ["Eliminations"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.labelIndex()["eliminations"] != "kills" {
		t.Errorf("labels = %v", cfg.Labels)
	}
}

func TestParseConfigRejectsIncompleteContract(t *testing.T) {
	tests := map[string]string{
		"not yaml":       "search: [",
		"missing search": "profile:\n  url: https://x/{id}\n  ready: main\nlabels:\n  kills: [Kills]\n",
		"profile without id": `
search: {url: "https://x", input: "#q", results: "#r", item: li, id_attr: data-id}
profile: {url: "https://x/p", ready: main}
labels: {kills: [Kills]}
`,
		"no labels": `
search: {url: "https://x", input: "#q", results: "#r", item: li, id_attr: data-id}
profile: {url: "https://x/p/{id}", ready: main}
`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(body)); !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("err = %v, want configuration error", err)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("err = %v, want configuration error", err)
	}
}
