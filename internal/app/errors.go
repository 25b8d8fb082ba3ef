package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrMissingIdentity = errors.New("missing viewer identity")
)
