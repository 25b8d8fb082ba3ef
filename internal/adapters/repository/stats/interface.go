// Package stats provides read access to the stat-submission store.
//
// The submissions themselves are produced by the ingestion pipeline; this
// repository only aggregates them per scope. The writer exists for the
// seeding CLI and tests.
package stats

import (
	"context"

	"github.com/reaperclan/ladder/internal/domain/model"
	"github.com/reaperclan/ladder/internal/domain/scope"
	"github.com/reaperclan/ladder/internal/domain/types"
)

// Repository aggregates raw stat submissions per scope.
type Repository interface {
	// FetchScope returns one unranked row per distinct player within the
	// scope, with counters summed across that player's qualifying
	// submissions and accuracy computed from the summed shots. It never
	// partially returns rows: any store failure yields ErrScopeUnavailable
	// (or ErrRateLimited) and no rows.
	FetchScope(ctx context.Context, sc scope.Scope) ([]types.LeaderboardRow, error)

	// RecordSubmission stores a submission and indexes it into every window
	// and mode bucket it counts toward.
	RecordSubmission(ctx context.Context, sub *model.Submission) error

	// CountSubmissions returns the total number of stored submissions.
	CountSubmissions(ctx context.Context) (int64, error)
}
