package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	// ErrObserveFailed marks a failed metric observation.
	ErrObserveFailed = errors.New("metrics observe failed")
)
