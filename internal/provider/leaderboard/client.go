package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tierlist/internal/constants"
	"tierlist/internal/domain"

	"github.com/valyala/fasthttp"
)

const defaultBaseURL = "https://%s.playfabapi.com"

// Client talks to the public leaderboard endpoints of the game backend. They
// are unauthenticated and limited: some titles answer 401/403/404 to every
// query, which is reported as an upstream error rather than a missing player.
type Client struct {
	baseURL string
	titleID string
	client  *fasthttp.Client
}

type ClientConfig struct {
	BaseURL string
	TitleID string
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.TitleID == "" {
		return nil, fmt.Errorf("PLAYFAB_TITLE_ID is required for the leaderboard provider: %w", domain.ErrConfiguration)
	}
	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf(defaultBaseURL, strings.ToLower(cfg.TitleID))
	}

	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		titleID: cfg.TitleID,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.LeaderboardReadTimeout,
			WriteTimeout:        constants.LeaderboardReadTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}, nil
}

type ProfileConstraints struct {
	ShowDisplayName bool `json:"ShowDisplayName"`
	ShowStatistics  bool `json:"ShowStatistics"`
	ShowLastLogin   bool `json:"ShowLastLogin"`
}

type LeaderboardRequest struct {
	TitleID            string              `json:"TitleId"`
	StatisticName      string              `json:"StatisticName"`
	PlayFabID          string              `json:"PlayFabId,omitempty"`
	StartPosition      *int                `json:"StartPosition,omitempty"`
	MaxResultsCount    int                 `json:"MaxResultsCount"`
	ProfileConstraints *ProfileConstraints `json:"ProfileConstraints,omitempty"`
}

type LeaderboardResponse struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   LeaderboardData `json:"data"`
}

type LeaderboardData struct {
	Leaderboard []LeaderboardEntry `json:"Leaderboard"`
}

type LeaderboardEntry struct {
	PlayFabID   string         `json:"PlayFabId"`
	DisplayName string         `json:"DisplayName"`
	StatValue   float64        `json:"StatValue"`
	Position    int            `json:"Position"`
	Profile     *PlayerProfile `json:"Profile,omitempty"`
}

type PlayerProfile struct {
	PlayerID    string      `json:"PlayerId"`
	DisplayName string      `json:"DisplayName"`
	LastLogin   *time.Time  `json:"LastLogin,omitempty"`
	Statistics  []Statistic `json:"Statistics"`
}

type Statistic struct {
	Name    string  `json:"Name"`
	Value   float64 `json:"Value"`
	Version int     `json:"Version"`
}

// GetLeaderboard returns the top entries for a statistic.
func (c *Client) GetLeaderboard(ctx context.Context, statistic string, maxResults int) (*LeaderboardResponse, json.RawMessage, error) {
	start := 0
	return doRequest[LeaderboardResponse](ctx, c, "/Client/GetLeaderboard", LeaderboardRequest{
		TitleID:            c.titleID,
		StatisticName:      statistic,
		StartPosition:      &start,
		MaxResultsCount:    maxResults,
		ProfileConstraints: &ProfileConstraints{ShowDisplayName: true, ShowStatistics: true},
	})
}

// GetLeaderboardAroundPlayer returns the entry of one player for a statistic.
func (c *Client) GetLeaderboardAroundPlayer(ctx context.Context, statistic, playFabID string) (*LeaderboardResponse, json.RawMessage, error) {
	return doRequest[LeaderboardResponse](ctx, c, "/Client/GetLeaderboardAroundPlayer", LeaderboardRequest{
		TitleID:            c.titleID,
		StatisticName:      statistic,
		PlayFabID:          playFabID,
		MaxResultsCount:    1,
		ProfileConstraints: &ProfileConstraints{ShowDisplayName: true, ShowStatistics: true},
	})
}

func doRequest[T any](ctx context.Context, client *Client, path string, body any) (*T, json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, nil, fmt.Errorf("%s: %w", path, domain.ErrTimeout)
		}
		return nil, nil, fmt.Errorf("%s: %w: %v", path, domain.ErrUpstream, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, nil, fmt.Errorf("%s: %w: status %d", path, domain.ErrUpstream, resp.StatusCode())
	}

	raw := append(json.RawMessage(nil), resp.Body()...)
	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, nil, fmt.Errorf("%s: %w: unexpected response: %v", path, domain.ErrUpstream, err)
	}
	return &result, raw, nil
}
