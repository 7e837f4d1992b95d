package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tierlist/internal/domain"
	"tierlist/internal/middleware"
	"tierlist/internal/service"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

type fakeResolver struct {
	profile *domain.Profile
	err     error
	got     []service.ProfileRequest
}

func (f *fakeResolver) Resolve(ctx context.Context, req service.ProfileRequest) (*domain.Profile, error) {
	f.got = append(f.got, req)
	return f.profile, f.err
}

type fakeIdentity struct {
	player  *domain.Player
	search  *service.SearchResult
	history []domain.NicknameChange
	err     error

	linked []*string
}

func (f *fakeIdentity) Link(ctx context.Context, playerID int64, providerID *string) (*domain.Player, error) {
	f.linked = append(f.linked, providerID)
	return f.player, f.err
}

func (f *fakeIdentity) SearchCandidates(ctx context.Context, name string) (*service.SearchResult, error) {
	return f.search, f.err
}

func (f *fakeIdentity) Nicknames(ctx context.Context, playerID int64) ([]domain.NicknameChange, error) {
	return f.history, f.err
}

const testPassword = "hunter2"

func newTestHandler(res *fakeResolver, ident *fakeIdentity) http.Handler {
	mux := http.NewServeMux()
	NewTrackerServer(res, ident, zerolog.Nop()).Routes(mux, testPassword)
	return mux
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestGetProfileFresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := &fakeResolver{profile: &domain.Profile{StatsRecord: domain.StatsRecord{
		PlayerID:      42,
		GlobalRank:    ptr(100),
		KDRatio:       ptr(1.5),
		RawPayload:    json.RawMessage(`{"rank":"100"}`),
		Source:        "scrape",
		FetchSuccess:  true,
		LastUpdated:   now,
		LastSuccessAt: &now,
	}}}
	h := newTestHandler(res, &fakeIdentity{})

	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/profile?playerId=42&playerName=Roland&forceRefresh=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	want := service.ProfileRequest{PlayerID: 42, PlayerName: "Roland", ForceRefresh: true}
	if diff := cmp.Diff([]service.ProfileRequest{want}, res.got); diff != "" {
		t.Errorf("resolver request (-want +got):\n%s", diff)
	}

	if body["global_rank"] != float64(100) || body["kd_ratio"] != 1.5 || body["fromCache"] != false {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["cacheAge"]; ok {
		t.Error("cacheAge present on a fresh fetch")
	}
	if _, ok := body["stale"]; ok {
		t.Error("stale present on a fresh fetch")
	}
	if body["level"] != nil {
		t.Errorf("level = %v, want null", body["level"])
	}
	if raw, ok := body["raw_data"].(map[string]any); !ok || raw["rank"] != "100" {
		t.Errorf("raw_data = %v", body["raw_data"])
	}
}

func TestGetProfileCachedAndStale(t *testing.T) {
	age := 90 * time.Minute
	res := &fakeResolver{profile: &domain.Profile{FromCache: true, CacheAge: &age}}
	h := newTestHandler(res, &fakeIdentity{})

	_, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/profile?playerId=1&playerName=a", nil))
	if body["fromCache"] != true || body["cacheAge"] != float64(90) {
		t.Errorf("cached body = %v", body)
	}
	if res.got[0].ForceRefresh {
		t.Error("forceRefresh set without the parameter")
	}

	res.profile = &domain.Profile{FromCache: true, Stale: true, Error: "upstream timeout"}
	rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/profile?playerId=1&playerName=a", nil))
	if rec.Code != http.StatusOK || body["stale"] != true || body["error"] != "upstream timeout" {
		t.Errorf("stale response = %d %v", rec.Code, body)
	}
	if _, ok := body["cacheAge"]; ok {
		t.Error("cacheAge present on a stale fallback")
	}
}

func TestGetProfileBadRequest(t *testing.T) {
	res := &fakeResolver{}
	h := newTestHandler(res, &fakeIdentity{})

	for _, q := range []string{
		"",
		"?playerName=Roland",
		"?playerId=abc&playerName=Roland",
		"?playerId=-3&playerName=Roland",
		"?playerId=42",
		"?playerId=42&playerName=%20",
	} {
		rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/profile"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: status = %d, want 400", q, rec.Code)
		}
		if body["kind"] != "invalid_input" {
			t.Errorf("%q: kind = %v", q, body["kind"])
		}
	}
	if len(res.got) != 0 {
		t.Errorf("resolver called for bad requests: %v", res.got)
	}
}

func TestGetProfileErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"not found", fmt.Errorf("no player: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{"upstream", fmt.Errorf("status 503: %w", domain.ErrUpstream), http.StatusInternalServerError, "upstream"},
		{"timeout", domain.ErrTimeout, http.StatusInternalServerError, "timeout"},
		{"configuration", domain.ErrConfiguration, http.StatusInternalServerError, "configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeResolver{err: tt.err}, &fakeIdentity{})
			rec, body := do(t, h, httptest.NewRequest(http.MethodGet, "/api/profile?playerId=1&playerName=x", nil))
			if rec.Code != tt.status || body["kind"] != tt.kind {
				t.Errorf("got %d %v, want %d %s", rec.Code, body["kind"], tt.status, tt.kind)
			}
			if body["error"] != tt.err.Error() {
				t.Errorf("error = %v, want %q", body["error"], tt.err.Error())
			}
		})
	}
}

func TestGetProfileAmbiguous(t *testing.T) {
	amb := &domain.AmbiguousError{Query: "bob", Candidates: []domain.Candidate{
		{ProviderID: "A1", DisplayName: "Bob", LookupCount: 3},
		{ProviderID: "B2", DisplayName: "bob"},
	}}
	h := newTestHandler(&fakeResolver{err: amb}, &fakeIdentity{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile?playerId=1&playerName=bob", nil))
	if rec.Code != http.StatusMultipleChoices {
		t.Fatalf("status = %d, want 300", rec.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	want := []candidateResponse{
		{PlayfabID: "A1", DisplayName: "Bob", LookupCount: 3},
		{PlayfabID: "B2", DisplayName: "bob"},
	}
	if diff := cmp.Diff(want, body.Candidates); diff != "" {
		t.Errorf("candidates (-want +got):\n%s", diff)
	}
}

func linkRequestFor(body, password string) *http.Request {
	req := httptest.NewRequest(http.MethodPut, "/api/players/link", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if password != "" {
		req.Header.Set(middleware.AdminPasswordHeader, password)
	}
	return req
}

func TestLinkPlayerRequiresPassword(t *testing.T) {
	ident := &fakeIdentity{player: &domain.Player{ID: 7}}
	h := newTestHandler(&fakeResolver{}, ident)

	for _, pw := range []string{"", "wrong"} {
		rec, _ := do(t, h, linkRequestFor(`{"id":7,"playfab_id":"A1"}`, pw))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("password %q: status = %d, want 401", pw, rec.Code)
		}
	}
	if len(ident.linked) != 0 {
		t.Error("link applied without a valid password")
	}
}

func TestLinkPlayer(t *testing.T) {
	ident := &fakeIdentity{player: &domain.Player{ID: 7, Name: "Roland", Tier: 2, ProviderID: ptr("A1")}}
	h := newTestHandler(&fakeResolver{}, ident)

	rec, body := do(t, h, linkRequestFor(`{"id":7,"playfab_id":"A1"}`, testPassword))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if body["playfab_id"] != "A1" || body["name"] != "Roland" {
		t.Errorf("body = %v", body)
	}

	ident.player = &domain.Player{ID: 7, Name: "Roland"}
	rec, body = do(t, h, linkRequestFor(`{"id":7,"playfab_id":null}`, testPassword))
	if rec.Code != http.StatusOK || body["playfab_id"] != nil {
		t.Errorf("unassign = %d %v", rec.Code, body)
	}
	if len(ident.linked) != 2 || *ident.linked[0] != "A1" || ident.linked[1] != nil {
		t.Errorf("linked = %v", ident.linked)
	}
}

func TestLinkPlayerBadRequests(t *testing.T) {
	ident := &fakeIdentity{}
	h := newTestHandler(&fakeResolver{}, ident)
	for _, b := range []string{
		`not json`,
		`{"playfab_id":"A1"}`,
		`{"id":0}`,
		`{"id":7}`,
		`{"id":7,"playfab_id":42}`,
	} {
		rec, body := do(t, h, linkRequestFor(b, testPassword))
		if rec.Code != http.StatusBadRequest || body["kind"] != "invalid_input" {
			t.Errorf("%s: status = %d kind %v, want 400 invalid_input", b, rec.Code, body["kind"])
		}
	}
	if len(ident.linked) != 0 {
		t.Errorf("link changed by a bad request: %v", ident.linked)
	}

	ident = &fakeIdentity{err: fmt.Errorf("player 9: %w", domain.ErrNotFound)}
	h = newTestHandler(&fakeResolver{}, ident)
	if rec, _ := do(t, h, linkRequestFor(`{"id":9,"playfab_id":"A1"}`, testPassword)); rec.Code != http.StatusNotFound {
		t.Errorf("unknown player status = %d, want 404", rec.Code)
	}
}

func TestSearchCandidates(t *testing.T) {
	ident := &fakeIdentity{search: &service.SearchResult{
		Query:      "roland",
		Candidates: []domain.Candidate{{ProviderID: "A1", DisplayName: "Roland", LookupCount: 4}},
		Similar:    []service.SimilarName{{PlayerID: 3, Name: "Rolan", Distance: 1}},
	}}
	h := newTestHandler(&fakeResolver{}, ident)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players/search?name=roland", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := searchResponse{
		Query:      "roland",
		Candidates: []candidateResponse{{PlayfabID: "A1", DisplayName: "Roland", LookupCount: 4}},
		Warnings:   []similarResponse{{PlayerID: 3, Name: "Rolan", Distance: 1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("search response (-want +got):\n%s", diff)
	}
}

func TestGetNicknames(t *testing.T) {
	seen := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ident := &fakeIdentity{history: []domain.NicknameChange{{ID: "x", PlayerID: 5, Nickname: "Roland", SeenAt: seen}}}
	h := newTestHandler(&fakeResolver{}, ident)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players/5/nicknames", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []nicknameResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Nickname != "Roland" || !got[0].SeenAt.Equal(seen) {
		t.Errorf("history = %+v", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players/abc/nicknames", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&fakeResolver{}, &fakeIdentity{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func ptr[T any](v T) *T { return &v }
