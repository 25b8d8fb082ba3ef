package stats

import "errors"

// Sentinel kinds for stats-store errors. The aggregator maps these onto
// per-scope envelope codes; they never abort sibling scopes.
var (
	ErrScopeUnavailable  = errors.New("scope unavailable")
	ErrRateLimited       = errors.New("stats store rate limited")
	ErrInvalidSubmission = errors.New("invalid submission")
)
