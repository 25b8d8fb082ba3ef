// Package types contains common types used across the application
package types

import "time"

// LeaderboardRow is one player's aggregated stats within a scope, plus the
// dense rank assigned by the ranking engine. Rows are recomputed per request
// and never persisted as-is; only snapshots carry them into storage.
//
// The average fields are pointers because they are present on lifetime rows
// only. Display layers choose between totals and averages.
type LeaderboardRow struct {
	Rank        int       `json:"rank"`
	PlayerName  string    `json:"player_name"`
	ClanName    string    `json:"clan_name,omitempty"`
	Kills       int       `json:"kills"`
	Deaths      int       `json:"deaths"`
	ShotsFired  int       `json:"shots_fired"`
	ShotsHit    int       `json:"shots_hit"`
	Accuracy    string    `json:"accuracy"`
	Submissions int       `json:"submissions"`
	SubmittedAt time.Time `json:"submitted_at"`

	AvgKills      *float64 `json:"avg_kills,omitempty"`
	AvgDeaths     *float64 `json:"avg_deaths,omitempty"`
	AvgShotsFired *float64 `json:"avg_shots_fired,omitempty"`
	AvgShotsHit   *float64 `json:"avg_shots_hit,omitempty"`
}

// ScopeResult is the per-scope envelope returned by a batch aggregation.
// Exactly one of Results or Error is meaningful: a failed scope carries an
// error code and no rows, a healthy scope carries rows (possibly empty).
type ScopeResult struct {
	Results []LeaderboardRow `json:"results,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Error codes carried in ScopeResult.Error.
const (
	ErrCodeScopeUnavailable = "scope_unavailable"
	ErrCodeRateLimited      = "rate_limited"
)

// RankingEntry records a viewer's rank and row in one identity-bearing scope
// at snapshot time. Scopes where the viewer has no row produce no entry.
type RankingEntry struct {
	Scope string          `json:"scope"`
	Rank  int             `json:"rank"`
	Stats *LeaderboardRow `json:"stats"`
}

// ProfileSnapshot is one immutable point-in-time record of a viewer's ranks,
// appended to that user's history. Never mutated or deleted by this service.
type ProfileSnapshot struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	DiscordID string         `json:"discord_id,omitempty"`
	Time      time.Time      `json:"time"`
	Profile   []RankingEntry `json:"profile"`
}

// UserRankingState is the per-user ranking document: the last known profile
// plus the append-only snapshot history. LastProfile and LastUpdated are
// overwritten on every successful snapshot write; History only grows.
type UserRankingState struct {
	UserID      string            `json:"user_id"`
	DiscordID   string            `json:"discord_id,omitempty"`
	LastProfile []RankingEntry    `json:"last_profile"`
	LastUpdated time.Time         `json:"last_updated"`
	History     []ProfileSnapshot `json:"history"`
}

// ViewerIdentity carries the authenticated viewer's identifiers as opaque
// strings. They are produced by the external profile/identity subsystem; this
// service only matches DisplayName against rows and keys storage by UserID.
type ViewerIdentity struct {
	UserID      string
	DiscordID   string
	DisplayName string
}
