// Package snapshot persists per-user ranking state and snapshot history.
package snapshot

import (
	"context"

	"github.com/reaperclan/ladder/internal/domain/types"
)

// Repository owns the UserRankingState documents. It is written only on
// behalf of the authenticated user whose session triggered the snapshot.
type Repository interface {
	// RecordSnapshot upserts the user's state (last profile and timestamp
	// overwritten) and appends one immutable snapshot to the history. An
	// empty entry list is a full no-op; the repository never writes a
	// partial entry list.
	RecordSnapshot(ctx context.Context, in *RecordSnapshotInput) (*RecordSnapshotOutput, error)

	// GetState returns the user's state including the full history.
	// Returns ErrStateNotFound for unknown users.
	GetState(ctx context.Context, userID string) (*types.UserRankingState, error)
}
