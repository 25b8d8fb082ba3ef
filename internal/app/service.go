// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	snapshotrepo "github.com/reaperclan/ladder/internal/adapters/repository/snapshot"
	statsrepo "github.com/reaperclan/ladder/internal/adapters/repository/stats"
	"github.com/reaperclan/ladder/internal/domain/average"
	"github.com/reaperclan/ladder/internal/domain/ranking"
	"github.com/reaperclan/ladder/internal/domain/scope"
	"github.com/reaperclan/ladder/internal/domain/types"
	"github.com/reaperclan/ladder/pkg/logger"
	"github.com/reaperclan/ladder/pkg/metrics"
)

// Service implements the leaderboard aggregation and snapshot pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	stats     statsrepo.Repository
	snapshots snapshotrepo.Repository

	// Configuration
	redisAddr      string
	redisPassword  string
	redisDB        int
	storeRateLimit float64
	storeRateBurst int
	dailyGuard     bool

	// State
	redisClient *redis.Client
	started     bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRedisAddr sets the Redis address backing both stores.
func WithRedisAddr(addr string) Option {
	return func(s *Service) {
		if addr != "" {
			s.redisAddr = addr
		}
	}
}

// WithRedisPassword sets the Redis password.
func WithRedisPassword(password string) Option {
	return func(s *Service) {
		s.redisPassword = password
	}
}

// WithRedisDB selects the Redis database.
func WithRedisDB(db int) Option {
	return func(s *Service) {
		if db >= 0 {
			s.redisDB = db
		}
	}
}

// WithStoreRateLimit throttles stats-store reads to rps with the given
// burst. Zero rps disables the limiter.
func WithStoreRateLimit(rps float64, burst int) Option {
	return func(s *Service) {
		s.storeRateLimit = rps
		s.storeRateBurst = burst
	}
}

// WithDailyGuard enables the server-side once-per-UTC-day snapshot guard.
func WithDailyGuard(enabled bool) Option {
	return func(s *Service) {
		s.dailyGuard = enabled
	}
}

// WithRepositories injects pre-built repositories, bypassing Redis setup.
// Used by tests and by callers that manage their own connections.
func WithRepositories(stats statsrepo.Repository, snapshots snapshotrepo.Repository) Option {
	return func(s *Service) {
		s.stats = stats
		s.snapshots = snapshots
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		redisAddr:      "localhost:6379",
		redisDB:        0,
		storeRateLimit: 0,
		storeRateBurst: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service's storage backends.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting ladder service...")

	if s.stats == nil || s.snapshots == nil {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     s.redisAddr,
			Password: s.redisPassword,
			DB:       s.redisDB,
		})

		var limiter *rate.Limiter
		if s.storeRateLimit > 0 {
			limiter = rate.NewLimiter(rate.Limit(s.storeRateLimit), s.storeRateBurst)
		}

		statsRepo, err := statsrepo.NewRedis(&statsrepo.Config{
			RedisClient: s.redisClient,
			Limiter:     limiter,
		})
		if err != nil {
			return err
		}
		snapshotRepo, err := snapshotrepo.NewRedis(&snapshotrepo.Config{
			RedisClient: s.redisClient,
			DailyGuard:  s.dailyGuard,
		})
		if err != nil {
			return err
		}
		s.stats = statsRepo
		s.snapshots = snapshotRepo
	}

	s.started = true
	s.logger.Info(ctx, "ladder service started",
		logger.String("redisAddr", s.redisAddr),
		logger.Bool("dailyGuard", s.dailyGuard),
	)
	return nil
}

// Stop releases the service's storage connections.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if s.redisClient != nil {
		_ = s.redisClient.Close()
		s.redisClient = nil
	}

	s.started = false
	if s.logger != nil {
		s.logger.Info(context.Background(), "ladder service stopped")
	}
}

// AggregateRequest describes one batched scope aggregation.
type AggregateRequest struct {
	// Scopes to resolve; each settles independently.
	Scopes []scope.Name

	// SortBy and SortDir are applied uniformly across all scopes so that
	// cross-scope rank comparisons are meaningful.
	SortBy  ranking.Field
	SortDir ranking.Direction

	// Limit caps each scope's ranked rows. Zero means no cap.
	Limit int

	// Ref pins the "current" day/week/month windows. Zero means now.
	Ref time.Time
}

// Aggregate resolves every requested scope in one batch: fetch raw rows per
// scope concurrently, derive lifetime averages, then rank uniformly. A
// failure in one scope is isolated into its envelope and never aborts the
// batch.
func (s *Service) Aggregate(ctx context.Context, req AggregateRequest) map[scope.Name]types.ScopeResult {
	metrics.RecordBatchRequest()

	ref := req.Ref
	if ref.IsZero() {
		ref = time.Now()
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[scope.Name]types.ScopeResult, len(req.Scopes))
	)

	// Fan out one fetch per scope and wait for all to settle.
	for _, name := range req.Scopes {
		wg.Add(1)
		go func(name scope.Name) {
			defer wg.Done()

			start := time.Now()
			rows, err := s.stats.FetchScope(ctx, scope.New(name, ref))
			metrics.RecordScopeFetch(string(name), float64(time.Since(start).Milliseconds()))

			var res types.ScopeResult
			if err != nil {
				code := types.ErrCodeScopeUnavailable
				if errors.Is(err, statsrepo.ErrRateLimited) {
					code = types.ErrCodeRateLimited
				}
				metrics.RecordScopeError(string(name), code)
				s.logger.Warn(ctx, "scope fetch failed",
					logger.String("scope", string(name)),
					logger.Error(err),
				)
				res = types.ScopeResult{Error: code}
			} else {
				if name == scope.Lifetime {
					rows = average.WithAverages(rows)
				}
				res = types.ScopeResult{Results: rows}
			}

			mu.Lock()
			results[name] = res
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	// Rank healthy scopes under the caller's sort key.
	rankStart := time.Now()
	for name, res := range results {
		if res.Error != "" {
			continue
		}
		ranked := ranking.Rank(res.Results, req.SortBy, req.SortDir)
		if req.Limit > 0 && len(ranked) > req.Limit {
			ranked = ranked[:req.Limit]
		}
		results[name] = types.ScopeResult{Results: ranked}
	}
	metrics.RecordRankLatency(float64(time.Since(rankStart).Milliseconds()))

	return results
}

// BuildEntries locates the viewer's own row in each identity-bearing scope
// by case-insensitive display-name match. Failed scopes and scopes without a
// matching row contribute no entry; an unset display name yields none.
func BuildEntries(displayName string, results map[scope.Name]types.ScopeResult) []types.RankingEntry {
	if strings.TrimSpace(displayName) == "" {
		return nil
	}

	var entries []types.RankingEntry
	for _, name := range scope.Identity() {
		res, ok := results[name]
		if !ok || res.Error != "" {
			continue
		}
		for i := range res.Results {
			if strings.EqualFold(res.Results[i].PlayerName, displayName) {
				row := res.Results[i]
				entries = append(entries, types.RankingEntry{
					Scope: string(name),
					Rank:  row.Rank,
					Stats: &row,
				})
				break
			}
		}
	}
	return entries
}

// PersistSnapshot matches the viewer against the already-ranked results and
// records one snapshot. It either fully succeeds or is a full no-op; a
// viewer with no row in any identity-bearing scope writes nothing.
func (s *Service) PersistSnapshot(ctx context.Context, identity types.ViewerIdentity, results map[scope.Name]types.ScopeResult) (*snapshotrepo.RecordSnapshotOutput, error) {
	return s.RecordEntries(ctx, identity, BuildEntries(identity.DisplayName, results))
}

// RecordEntries records a snapshot from pre-built ranking entries, keeping
// only entries for identity-bearing scopes.
func (s *Service) RecordEntries(ctx context.Context, identity types.ViewerIdentity, entries []types.RankingEntry) (*snapshotrepo.RecordSnapshotOutput, error) {
	if identity.UserID == "" {
		return nil, ErrMissingIdentity
	}

	kept := make([]types.RankingEntry, 0, len(entries))
	for _, e := range entries {
		n, err := scope.Parse(e.Scope)
		if err != nil || !n.IsIdentityBearing() {
			continue
		}
		kept = append(kept, e)
	}

	out, err := s.snapshots.RecordSnapshot(ctx, &snapshotrepo.RecordSnapshotInput{
		UserID:    identity.UserID,
		DiscordID: identity.DiscordID,
		Entries:   kept,
		Time:      time.Now(),
	})
	if err != nil {
		metrics.RecordSnapshotError()
		return nil, err
	}

	switch {
	case out.Written:
		metrics.RecordSnapshotWrite()
		s.logger.Info(ctx, "snapshot recorded",
			logger.String("userID", identity.UserID),
			logger.Int("entries", len(kept)),
		)
	case out.Guarded:
		metrics.RecordSnapshotGuarded()
	default:
		metrics.RecordSnapshotNoop()
	}
	return out, nil
}

// ProfileState returns the viewer-facing ranking state with history.
func (s *Service) ProfileState(ctx context.Context, userID string) (*types.UserRankingState, error) {
	return s.snapshots.GetState(ctx, userID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"dailyGuard": s.dailyGuard,
	}

	if s.started {
		if n, err := s.stats.CountSubmissions(context.Background()); err == nil {
			stats["submissions"] = n
			metrics.UpdateTrackedSubmissions(n)
		}
	}

	return stats
}
