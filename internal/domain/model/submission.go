// Package model contains domain models passed between layers.
package model

import "time"

// Play modes recorded on a submission. Solo and squad are mutually
// exclusive; every submission carries exactly one.
const (
	ModeSolo  = "solo"
	ModeSquad = "squad"
)

// Submission represents one immutable stat submission produced by the
// ingestion pipeline. Day/week/month membership derives from SubmittedAt;
// lifetime is the unbounded union of all submissions.
type Submission struct {
	ID          string    `json:"id"`
	PlayerName  string    `json:"player_name"` // case-insensitive identity key
	ClanName    string    `json:"clan_name,omitempty"`
	Kills       int       `json:"kills"`
	Deaths      int       `json:"deaths"`
	ShotsFired  int       `json:"shots_fired"`
	ShotsHit    int       `json:"shots_hit"`
	Mode        string    `json:"mode"` // ModeSolo or ModeSquad
	SubmittedAt time.Time `json:"submitted_at"`
}

// Valid reports whether the submission is well-formed enough to store:
// non-empty identity, a known mode, and non-negative counters.
func (s Submission) Valid() bool {
	if s.PlayerName == "" || s.SubmittedAt.IsZero() {
		return false
	}
	if s.Mode != ModeSolo && s.Mode != ModeSquad {
		return false
	}
	return s.Kills >= 0 && s.Deaths >= 0 && s.ShotsFired >= 0 && s.ShotsHit >= 0
}
