package server

import (
	"encoding/json"
	"time"

	"tierlist/internal/domain"
	"tierlist/internal/service"
)

type profileResponse struct {
	PlayerID       int64    `json:"player_id"`
	PlayfabID      *string  `json:"playfab_id"`
	DisplayName    *string  `json:"display_name"`
	GlobalRank     *int     `json:"global_rank"`
	Level          *int     `json:"level"`
	KDRatio        *float64 `json:"kd_ratio"`
	WinRate        *float64 `json:"win_rate"`
	HoursPlayed    *float64 `json:"hours_played"`
	MatchesPlayed  *int     `json:"matches_played"`
	Kills          *int     `json:"kills"`
	Deaths         *int     `json:"deaths"`
	Wins           *int     `json:"wins"`
	Losses         *int     `json:"losses"`
	FavoriteClass  *string  `json:"favorite_class"`
	FavoriteWeapon *string  `json:"favorite_weapon"`

	ScrapeSuccess bool            `json:"scrape_success"`
	ErrorMessage  *string         `json:"error_message"`
	RawData       json.RawMessage `json:"raw_data,omitempty"`
	Source        string          `json:"source"`
	LastUpdated   time.Time       `json:"last_updated"`
	LastSuccessAt *time.Time      `json:"last_success_at"`

	FromCache bool   `json:"fromCache"`
	CacheAge  *int64 `json:"cacheAge,omitempty"`
	Stale     bool   `json:"stale,omitempty"`
	Error     string `json:"error,omitempty"`
}

func toProfileResponse(p *domain.Profile) profileResponse {
	resp := profileResponse{
		PlayerID:       p.PlayerID,
		PlayfabID:      p.ProviderID,
		DisplayName:    p.DisplayName,
		GlobalRank:     p.GlobalRank,
		Level:          p.Level,
		KDRatio:        p.KDRatio,
		WinRate:        p.WinRate,
		HoursPlayed:    p.HoursPlayed,
		MatchesPlayed:  p.MatchesPlayed,
		Kills:          p.Kills,
		Deaths:         p.Deaths,
		Wins:           p.Wins,
		Losses:         p.Losses,
		FavoriteClass:  p.FavoriteClass,
		FavoriteWeapon: p.FavoriteWeapon,
		ScrapeSuccess:  p.FetchSuccess,
		ErrorMessage:   p.ErrorMessage,
		Source:         p.Source,
		LastUpdated:    p.LastUpdated,
		LastSuccessAt:  p.LastSuccessAt,
		FromCache:      p.FromCache,
		Stale:          p.Stale,
		Error:          p.Error,
	}
	if len(p.RawPayload) > 0 && json.Valid(p.RawPayload) {
		resp.RawData = p.RawPayload
	}
	if p.CacheAge != nil {
		minutes := int64(p.CacheAge.Minutes())
		resp.CacheAge = &minutes
	}
	return resp
}

type playerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Tier      int       `json:"tier"`
	PlayfabID *string   `json:"playfab_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPlayerResponse(p *domain.Player) playerResponse {
	return playerResponse{
		ID:        p.ID,
		Name:      p.Name,
		Tier:      p.Tier,
		PlayfabID: p.ProviderID,
		UpdatedAt: p.UpdatedAt,
	}
}

type candidateResponse struct {
	PlayfabID   string   `json:"playfab_id"`
	DisplayName string   `json:"display_name"`
	LookupCount int      `json:"lookup_count,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

func toCandidates(cs []domain.Candidate) []candidateResponse {
	out := make([]candidateResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, candidateResponse{
			PlayfabID:   c.ProviderID,
			DisplayName: c.DisplayName,
			LookupCount: c.LookupCount,
			Aliases:     c.Aliases,
		})
	}
	return out
}

type similarResponse struct {
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

type searchResponse struct {
	Query      string              `json:"query"`
	Candidates []candidateResponse `json:"candidates"`
	Warnings   []similarResponse   `json:"warnings"`
}

func toSearchResponse(r *service.SearchResult) searchResponse {
	warnings := make([]similarResponse, 0, len(r.Similar))
	for _, s := range r.Similar {
		warnings = append(warnings, similarResponse{PlayerID: s.PlayerID, Name: s.Name, Distance: s.Distance})
	}
	return searchResponse{
		Query:      r.Query,
		Candidates: toCandidates(r.Candidates),
		Warnings:   warnings,
	}
}

type nicknameResponse struct {
	Nickname string    `json:"nickname"`
	SeenAt   time.Time `json:"seen_at"`
}

type errorResponse struct {
	Error      string              `json:"error"`
	Kind       string              `json:"kind"`
	Candidates []candidateResponse `json:"candidates,omitempty"`
}
