// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	snapshotrepo "github.com/reaperclan/ladder/internal/adapters/repository/snapshot"
	"github.com/reaperclan/ladder/internal/domain/types"
)

// RankingsDependencies defines the interface for snapshot operations.
type RankingsDependencies interface {
	RecordEntries(ctx context.Context, identity types.ViewerIdentity, entries []types.RankingEntry) (*snapshotrepo.RecordSnapshotOutput, error)
	ProfileState(ctx context.Context, userID string) (*types.UserRankingState, error)
}

// RankingsHandler handles snapshot writes and profile reads.
type RankingsHandler struct {
	deps RankingsDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandlePostRankings handles POST /rankings requests. The body carries the
// viewer's ranking entries; identity comes from the auth headers. The write
// either fully succeeds or is a full no-op, never a partial entry list.
func (h *RankingsHandler) HandlePostRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_rankings"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	identity := viewerIdentity(r)
	if identity.UserID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	out, err := h.deps.RecordEntries(r.Context(), identity, req.Entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	status := "noop"
	if out.Written {
		status = "recorded"
	}
	writeJSON(w, http.StatusOK, snapshotResponse{Status: status})
}

// HandleGetProfile handles GET /rankings/{user_id} requests, returning the
// user's last profile and full snapshot history.
func (h *RankingsHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/rankings/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	state, err := h.deps.ProfileState(r.Context(), userID)
	if err != nil {
		if errors.Is(err, snapshotrepo.ErrStateNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
