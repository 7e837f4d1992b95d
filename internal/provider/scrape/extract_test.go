package scrape

import (
	"os"
	"path/filepath"
	"testing"

	"tierlist/internal/domain"

	"github.com/google/go-cmp/cmp"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(b)
}

func loadDefault(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return cfg
}

func TestExtractFields(t *testing.T) {
	fields, notFound, err := ExtractFields(fixture(t, "profile.html"), loadDefault(t))
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}
	if notFound {
		t.Fatal("profile page reported as not found")
	}

	want := map[string]string{
		"display_name":    "Sir Lancelot",
		"global_rank":     "#57",
		"level":           "42",
		"kd_ratio":        "2.50",
		"win_rate":        "64%",
		"hours_played":    "5d 3h 30m",
		"matches_played":  "1,204",
		"kills":           "1,000",
		"deaths":          "400",
		"favorite_weapon": "Messer",
		"favorite_class":  "-",
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFieldsNotFound(t *testing.T) {
	fields, notFound, err := ExtractFields(fixture(t, "not_found.html"), loadDefault(t))
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}
	if !notFound || fields != nil {
		t.Errorf("notFound = %v, fields = %v", notFound, fields)
	}
}

func TestExtractFieldsUnknownLayout(t *testing.T) {
	fields, notFound, err := ExtractFields(`<html><body><div>maintenance</div></body></html>`, loadDefault(t))
	if err != nil || notFound {
		t.Fatalf("err = %v, notFound = %v", err, notFound)
	}
	if len(fields) != 0 {
		t.Errorf("fields = %v, want none", fields)
	}
}

func TestParseSearchResults(t *testing.T) {
	cfg := loadDefault(t)
	got, err := ParseSearchResults(fixture(t, "search.html"), cfg.Search)
	if err != nil {
		t.Fatalf("ParseSearchResults: %v", err)
	}

	want := []domain.Candidate{
		{ProviderID: "A1", DisplayName: "Bob", LookupCount: 12, Aliases: []string{"Bobster", "B0b"}},
		{ProviderID: "B2", DisplayName: "Bobby"},
		{ProviderID: "A1", DisplayName: "Bob"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSearchResultsEmpty(t *testing.T) {
	cfg := loadDefault(t)
	got, err := ParseSearchResults(fixture(t, "search_empty.html"), cfg.Search)
	if err != nil {
		t.Fatalf("ParseSearchResults: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d candidates, want 0", len(got))
	}
}
