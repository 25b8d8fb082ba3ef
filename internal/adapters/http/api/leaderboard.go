// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	service "github.com/reaperclan/ladder/internal/app"
	"github.com/reaperclan/ladder/internal/domain/ranking"
	"github.com/reaperclan/ladder/internal/domain/scope"
	"github.com/reaperclan/ladder/internal/domain/types"
)

// Query defaults for GET /leaderboard.
const (
	defaultSortBy  = ranking.FieldKills
	defaultSortDir = ranking.Desc
	defaultLimit   = 50
)

// LeaderboardDependencies defines the interface for batch aggregation.
type LeaderboardDependencies interface {
	Aggregate(ctx context.Context, req service.AggregateRequest) map[scope.Name]types.ScopeResult
}

// LeaderboardHandler handles batched leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles
// GET /leaderboard?scopes=day,week&sort_by=kills&sort_dir=desc&limit=50 with
// optional month and year pinning the rolling windows. The response is one
// object keyed by scope name; failed scopes carry an error code instead of
// rows so that one bad window never fails the batch.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	scopes := scope.All()
	if raw := q.Get("scopes"); raw != "" {
		parsed, err := scope.ParseList(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
			return
		}
		scopes = parsed
	}

	sortBy := defaultSortBy
	if raw := q.Get("sort_by"); raw != "" {
		f, err := ranking.ParseField(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
			return
		}
		sortBy = f
	}

	sortDir := defaultSortDir
	if raw := q.Get("sort_dir"); raw != "" {
		d, err := ranking.ParseDirection(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
			return
		}
		sortDir = d
	}

	limit := defaultLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
		return
	}

	ref, err := parseRef(q.Get("month"), q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
		return
	}

	results := h.deps.Aggregate(r.Context(), service.AggregateRequest{
		Scopes:  scopes,
		SortBy:  sortBy,
		SortDir: sortDir,
		Limit:   limit,
		Ref:     ref,
	})

	out := make(map[string]types.ScopeResult, len(results))
	for name, res := range results {
		out[string(name)] = res
	}
	writeJSON(w, http.StatusOK, out)
}

// parseRef resolves the optional month/year pair into a window reference
// instant. Both must be given together; absent means "now" from the server's
// clock.
func parseRef(monthStr, yearStr string) (time.Time, error) {
	if monthStr == "" && yearStr == "" {
		return time.Time{}, nil
	}
	if monthStr == "" || yearStr == "" {
		return time.Time{}, fmt.Errorf("%w: month and year must be given together", ErrBadRequest)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: invalid month", ErrBadRequest)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1970 {
		return time.Time{}, fmt.Errorf("%w: invalid year", ErrBadRequest)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}
