package snapshot

import (
	"time"

	"github.com/reaperclan/ladder/internal/domain/types"
)

// RecordSnapshotInput carries one snapshot write.
type RecordSnapshotInput struct {
	UserID    string
	DiscordID string
	Entries   []types.RankingEntry
	Time      time.Time
}

// RecordSnapshotOutput reports what the write did.
type RecordSnapshotOutput struct {
	// Written is false when the call was a no-op (no entries, or the daily
	// guard suppressed a duplicate).
	Written bool

	// Guarded is true when the daily guard suppressed the write.
	Guarded bool

	// Snapshot is the appended history entry when Written is true.
	Snapshot *types.ProfileSnapshot
}
