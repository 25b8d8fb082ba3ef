// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RedisAddr, RedisPassword and RedisDB configure the backing store for
	// both the stats and snapshot repositories.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RequestRatePerSec and RequestRateBurst throttle the batch read
	// endpoint. Zero rate disables throttling.
	RequestRatePerSec float64 `koanf:"request_rate_per_sec"`
	RequestRateBurst  int     `koanf:"request_rate_burst"`

	// StoreRatePerSec and StoreRateBurst throttle reads against the stats
	// store; denied reads surface as rate_limited scope errors. Zero rate
	// disables throttling.
	StoreRatePerSec float64 `koanf:"store_rate_per_sec"`
	StoreRateBurst  int     `koanf:"store_rate_burst"`

	// SnapshotDailyGuard enables the server-side once-per-UTC-day snapshot
	// idempotency check. Off by default: the original behavior relies on
	// the client-side session latch alone.
	SnapshotDailyGuard bool `koanf:"snapshot_daily_guard"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		RedisAddr:           "localhost:6379",
		RedisDB:             0,
		MaxLeaderboardLimit: 200,
		RequestRatePerSec:   50,
		RequestRateBurst:    100,
		StoreRatePerSec:     0,
		StoreRateBurst:      1,
		SnapshotDailyGuard:  false,
	}
}
