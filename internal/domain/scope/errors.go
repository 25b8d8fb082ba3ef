package scope

import "errors"

// Sentinel kinds for scope parsing errors.
var (
	ErrUnknownScope   = errors.New("unknown scope")
	ErrEmptyScopeList = errors.New("empty scope list")
)
