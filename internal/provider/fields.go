package provider

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"tierlist/internal/domain"
)

// Field names of the extraction contract. Providers hand over a map from these
// names to raw text; every value is optional.
const (
	FieldProviderID     = "provider_id"
	FieldDisplayName    = "display_name"
	FieldGlobalRank     = "global_rank"
	FieldLevel          = "level"
	FieldKDRatio        = "kd_ratio"
	FieldWinRate        = "win_rate"
	FieldHoursPlayed    = "hours_played"
	FieldMatchesPlayed  = "matches_played"
	FieldKills          = "kills"
	FieldDeaths         = "deaths"
	FieldWins           = "wins"
	FieldLosses         = "losses"
	FieldFavoriteClass  = "favorite_class"
	FieldFavoriteWeapon = "favorite_weapon"
)

var (
	numberRe   = regexp.MustCompile(`[-+]?\d[\d,]*(?:\.\d+)?(?:\s?[kKmM]\b)?`)
	durationRe = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(d|h|m|s)[a-z]*`)
)

// RecordFromFields builds a record from extracted text. A field that is
// missing or does not parse stays nil; it never fails the whole record.
// When raw is empty the field map itself is kept as the raw payload.
func RecordFromFields(source string, fields map[string]string, raw json.RawMessage) *domain.StatsRecord {
	r := &domain.StatsRecord{
		Source:         source,
		ProviderID:     ParseString(fields[FieldProviderID]),
		DisplayName:    ParseString(fields[FieldDisplayName]),
		GlobalRank:     ParseInt(fields[FieldGlobalRank]),
		Level:          ParseInt(fields[FieldLevel]),
		KDRatio:        ParseFloat(fields[FieldKDRatio]),
		WinRate:        ParsePercent(fields[FieldWinRate]),
		HoursPlayed:    ParseHours(fields[FieldHoursPlayed]),
		MatchesPlayed:  ParseInt(fields[FieldMatchesPlayed]),
		Kills:          ParseInt(fields[FieldKills]),
		Deaths:         ParseInt(fields[FieldDeaths]),
		Wins:           ParseInt(fields[FieldWins]),
		Losses:         ParseInt(fields[FieldLosses]),
		FavoriteClass:  ParseString(fields[FieldFavoriteClass]),
		FavoriteWeapon: ParseString(fields[FieldFavoriteWeapon]),
		RawPayload:     raw,
	}
	if len(r.RawPayload) == 0 {
		if b, err := json.Marshal(fields); err == nil {
			r.RawPayload = b
		}
	}
	r.Derive()
	return r
}

// ParseString trims s and treats blanks and placeholder dashes as absent.
func ParseString(s string) *string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "—", "n/a", "na", "none", "null", "unknown":
		return nil
	}
	return &s
}

// ParseFloat reads the first number in s, honouring thousands separators and
// k/m suffixes.
func ParseFloat(s string) *float64 {
	m := numberRe.FindString(s)
	if m == "" {
		return nil
	}
	m = strings.TrimSpace(m)

	mult := 1.0
	switch m[len(m)-1] {
	case 'k', 'K':
		mult = 1e3
		m = strings.TrimSpace(m[:len(m)-1])
	case 'm', 'M':
		mult = 1e6
		m = strings.TrimSpace(m[:len(m)-1])
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	f *= mult
	return &f
}

func ParseInt(s string) *int {
	f := ParseFloat(s)
	if f == nil {
		return nil
	}
	i := int(math.Round(*f))
	return &i
}

// ParsePercent reads a win rate as a percentage; "52%" and "52" are both 52.
func ParsePercent(s string) *float64 {
	return ParseFloat(strings.ReplaceAll(s, "%", ""))
}

// ParseHours accepts plain numbers ("123.5") and unit strings ("5d 3h 20m",
// "412 hours").
func ParseHours(s string) *float64 {
	matches := durationRe.FindAllStringSubmatch(strings.ToLower(s), -1)
	if len(matches) == 0 {
		return ParseFloat(s)
	}

	var hours float64
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return nil
		}
		switch m[2] {
		case "d":
			hours += v * 24
		case "h":
			hours += v
		case "m":
			hours += v / 60
		case "s":
			hours += v / 3600
		}
	}
	return &hours
}
