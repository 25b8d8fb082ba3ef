package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidConfig wraps validation failures on a loaded config.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig wraps file, env and unmarshal failures during loading.
	ErrLoadConfig = errors.New("load config failed")
)
