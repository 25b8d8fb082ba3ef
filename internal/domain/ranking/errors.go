package ranking

import "errors"

// Sentinel kinds for ranking parameter errors.
var (
	ErrUnknownField     = errors.New("unknown sort field")
	ErrUnknownDirection = errors.New("unknown sort direction")
)
