// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	snapshotrepo "github.com/reaperclan/ladder/internal/adapters/repository/snapshot"
	service "github.com/reaperclan/ladder/internal/app"
	"github.com/reaperclan/ladder/internal/domain/scope"
	"github.com/reaperclan/ladder/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Aggregate resolves a batch of scopes into ranked result envelopes.
	Aggregate(ctx context.Context, req service.AggregateRequest) map[scope.Name]types.ScopeResult

	// RecordEntries persists one profile snapshot for the viewer.
	RecordEntries(ctx context.Context, identity types.ViewerIdentity, entries []types.RankingEntry) (*snapshotrepo.RecordSnapshotOutput, error)

	// ProfileState reads a user's last profile and snapshot history.
	ProfileState(ctx context.Context, userID string) (*types.UserRankingState, error)
}

// Identity headers populated by the upstream auth proxy. The service treats
// them as opaque strings.
const (
	headerUserID      = "X-User-ID"
	headerDiscordID   = "X-Discord-ID"
	headerDisplayName = "X-Display-Name"
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	rankingsHandler    *RankingsHandler
	limiter            *rate.Limiter
}

// NewServer creates a new API server with all handlers. A nil limiter
// disables request throttling on the batch read endpoint.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int, limiter *rate.Limiter) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankingsHandler:    NewRankingsHandler(deps),
		limiter:            limiter,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(RateLimitMiddleware(s.leaderboardHandler.HandleGetLeaderboard, s.limiter), "leaderboard"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandlePostRankings, "rankings"))
	mux.HandleFunc("/rankings/", MetricsMiddleware(s.rankingsHandler.HandleGetProfile, "rankings_profile"))
}

// snapshotRequest mirrors the OpenAPI schema for POST /rankings.
type snapshotRequest struct {
	Entries []types.RankingEntry `json:"entries"`
}

// snapshotResponse reports the write outcome. Status is "recorded" when a
// history entry was appended and "noop" otherwise.
type snapshotResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// viewerIdentity extracts the identity headers. UserID may be empty; the
// handlers decide whether that is an authentication failure.
func viewerIdentity(r *http.Request) types.ViewerIdentity {
	return types.ViewerIdentity{
		UserID:      r.Header.Get(headerUserID),
		DiscordID:   r.Header.Get(headerDiscordID),
		DisplayName: r.Header.Get(headerDisplayName),
	}
}
