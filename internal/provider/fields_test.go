package provider

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"1.85", f(1.85)},
		{"12,345", f(12345)},
		{"Rank #1,024", f(1024)},
		{"1.2k", f(1200)},
		{"3 M", f(3e6)},
		{"1.5 matches", f(1.5)},
		{"-0.25", f(-0.25)},
		{"", nil},
		{"n/a", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseFloat(tt.in)
			if !approx(got, tt.want) {
				t.Errorf("ParseFloat(%q) = %v, want %v", tt.in, show(got), show(tt.want))
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	if got := ParseInt("Level 42"); got == nil || *got != 42 {
		t.Errorf("ParseInt(Level 42) = %v", got)
	}
	if got := ParseInt("2.6"); got == nil || *got != 3 {
		t.Errorf("ParseInt(2.6) = %v, want 3", got)
	}
	if got := ParseInt("none"); got != nil {
		t.Errorf("ParseInt(none) = %v, want nil", *got)
	}
}

func TestParsePercent(t *testing.T) {
	for _, in := range []string{"52%", "52 %", "52"} {
		if got := ParsePercent(in); !approx(got, f(52)) {
			t.Errorf("ParsePercent(%q) = %v, want 52", in, show(got))
		}
	}
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"123.5", f(123.5)},
		{"412 hours", f(412)},
		{"5d 3h 30m", f(123.5)},
		{"90 minutes", f(1.5)},
		{"1,200h", f(1200)},
		{"-", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseHours(tt.in); !approx(got, tt.want) {
				t.Errorf("ParseHours(%q) = %v, want %v", tt.in, show(got), show(tt.want))
			}
		})
	}
}

func TestParseString(t *testing.T) {
	if got := ParseString("  Vanguard "); got == nil || *got != "Vanguard" {
		t.Errorf("ParseString trimmed = %v", got)
	}
	for _, in := range []string{"", "  ", "-", "N/A", "Unknown"} {
		if got := ParseString(in); got != nil {
			t.Errorf("ParseString(%q) = %q, want nil", in, *got)
		}
	}
}

func TestRecordFromFields(t *testing.T) {
	fields := map[string]string{
		FieldProviderID:    "ABC123",
		FieldDisplayName:   "Sir Lancelot",
		FieldGlobalRank:    "#57",
		FieldKills:         "1,000",
		FieldDeaths:        "400",
		FieldWins:          "30",
		FieldLosses:        "10",
		FieldFavoriteClass: "-",
	}

	r := RecordFromFields("scrape", fields, nil)

	if r.Source != "scrape" {
		t.Errorf("Source = %q", r.Source)
	}
	if r.ProviderID == nil || *r.ProviderID != "ABC123" {
		t.Errorf("ProviderID = %v", r.ProviderID)
	}
	if r.GlobalRank == nil || *r.GlobalRank != 57 {
		t.Errorf("GlobalRank = %v", r.GlobalRank)
	}
	if !approx(r.KDRatio, f(2.5)) {
		t.Errorf("KDRatio = %v, want 2.5", show(r.KDRatio))
	}
	if !approx(r.WinRate, f(75)) {
		t.Errorf("WinRate = %v, want 75", show(r.WinRate))
	}
	if r.MatchesPlayed == nil || *r.MatchesPlayed != 40 {
		t.Errorf("MatchesPlayed = %v, want 40", r.MatchesPlayed)
	}
	if r.FavoriteClass != nil || r.Level != nil {
		t.Errorf("missing fields should stay nil: class=%v level=%v", r.FavoriteClass, r.Level)
	}

	var raw map[string]string
	if err := json.Unmarshal(r.RawPayload, &raw); err != nil {
		t.Fatalf("raw payload: %v", err)
	}
	if diff := cmp.Diff(fields, raw); diff != "" {
		t.Errorf("raw payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordFromFieldsKeepsRaw(t *testing.T) {
	raw := json.RawMessage(`{"entry":1}`)
	r := RecordFromFields("leaderboard", map[string]string{}, raw)
	if string(r.RawPayload) != `{"entry":1}` {
		t.Errorf("RawPayload = %s", r.RawPayload)
	}
}

func f(v float64) *float64 { return &v }

func approx(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return math.Abs(*a-*b) < 1e-9
}

func show(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
