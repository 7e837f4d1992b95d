package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tierlist/internal/domain"
	"tierlist/internal/middleware"
	"tierlist/internal/service"

	"github.com/rs/zerolog"
)

type ProfileResolver interface {
	Resolve(ctx context.Context, req service.ProfileRequest) (*domain.Profile, error)
}

type IdentityManager interface {
	Link(ctx context.Context, playerID int64, providerID *string) (*domain.Player, error)
	SearchCandidates(ctx context.Context, name string) (*service.SearchResult, error)
	Nicknames(ctx context.Context, playerID int64) ([]domain.NicknameChange, error)
}

type TrackerServer struct {
	stats    ProfileResolver
	identity IdentityManager
	logger   zerolog.Logger
}

func NewTrackerServer(stats ProfileResolver, identity IdentityManager, logger zerolog.Logger) *TrackerServer {
	return &TrackerServer{stats: stats, identity: identity, logger: logger}
}

// Routes registers every endpoint. Mutating endpoints sit behind the admin
// password.
func (s *TrackerServer) Routes(mux *http.ServeMux, adminPassword string) {
	admin := middleware.AdminOnly(adminPassword)

	mux.HandleFunc("GET /api/profile", s.GetProfile)
	mux.Handle("PUT /api/players/link", admin(http.HandlerFunc(s.LinkPlayer)))
	mux.HandleFunc("GET /api/players/search", s.SearchCandidates)
	mux.HandleFunc("GET /api/players/{id}/nicknames", s.GetNicknames)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func (s *TrackerServer) GetProfile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	playerID, err := parseID(q.Get("playerId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := strings.TrimSpace(q.Get("playerName"))
	if name == "" {
		s.writeError(w, r, invalid("playerName is required"))
		return
	}

	profile, err := s.stats.Resolve(r.Context(), service.ProfileRequest{
		PlayerID:     playerID,
		PlayerName:   name,
		ForceRefresh: q.Get("forceRefresh") == "true",
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// linkRequest keeps playfab_id raw so a missing key can be told apart from an
// explicit null, which unassigns.
type linkRequest struct {
	ID        int64           `json:"id"`
	PlayfabID json.RawMessage `json:"playfab_id"`
}

func (s *TrackerServer) LinkPlayer(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, invalid("malformed request body"))
		return
	}
	if req.ID <= 0 {
		s.writeError(w, r, invalid("id must be a positive integer"))
		return
	}
	providerID, err := parseProviderID(req.PlayfabID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	player, err := s.identity.Link(r.Context(), req.ID, providerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlayerResponse(player))
}

func parseProviderID(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 {
		return nil, invalid("playfab_id is required, use null to unlink")
	}
	if string(raw) == "null" {
		return nil, nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, invalid("playfab_id must be a string or null")
	}
	return &id, nil
}

func (s *TrackerServer) SearchCandidates(w http.ResponseWriter, r *http.Request) {
	result, err := s.identity.SearchCandidates(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSearchResponse(result))
}

func (s *TrackerServer) GetNicknames(w http.ResponseWriter, r *http.Request) {
	playerID, err := parseID(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	history, err := s.identity.Nicknames(r.Context(), playerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]nicknameResponse, 0, len(history))
	for _, h := range history {
		out = append(out, nicknameResponse{Nickname: h.Nickname, SeenAt: h.SeenAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *TrackerServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error(), Kind: domain.Kind(err)}
	if amb, ok := domain.AsAmbiguous(err); ok {
		body.Candidates = toCandidates(amb.Candidates)
	}

	log := zerolog.Ctx(r.Context())
	if log.GetLevel() == zerolog.Disabled {
		log = &s.logger
	}
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	writeJSON(w, status, body)
}

func statusFor(err error) int {
	if _, ok := domain.AsAmbiguous(err); ok {
		return http.StatusMultipleChoices
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func parseID(raw string) (int64, error) {
	if raw == "" {
		return 0, invalid("playerId is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("player id must be a positive integer")
	}
	return id, nil
}

type invalidInputError string

func (e invalidInputError) Error() string { return string(e) }
func (e invalidInputError) Unwrap() error { return domain.ErrInvalidInput }

func invalid(msg string) error { return invalidInputError(msg) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
