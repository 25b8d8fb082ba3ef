package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/reaperclan/ladder/internal/domain/model"
	"github.com/reaperclan/ladder/internal/domain/scope"
	"github.com/reaperclan/ladder/internal/domain/types"
)

const (
	// Key layout in Redis.
	submissionKeyPrefix = "submission:"
	scopeIndexPrefix    = "idx:scope:"
)

// Config holds configuration for the Redis stats repository.
type Config struct {
	// RedisClient is the shared Redis client.
	RedisClient *redis.Client

	// Limiter optionally throttles reads against the shared store. A denied
	// read surfaces as ErrRateLimited for the caller to back off on; the
	// repository never retries internally.
	Limiter *rate.Limiter
}

// redisRepository implements Repository on Redis.
type redisRepository struct {
	client  *redis.Client
	limiter *rate.Limiter
}

// NewRedis creates a Redis-backed stats repository.
func NewRedis(cfg *Config) (Repository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &redisRepository{
		client:  cfg.RedisClient,
		limiter: cfg.Limiter,
	}, nil
}

// indexKey returns the Redis set holding submission IDs for a scope.
func indexKey(sc scope.Scope) string {
	switch sc.Name {
	case scope.Day, scope.Week, scope.Month:
		return fmt.Sprintf("%s%s:%s", scopeIndexPrefix, sc.Name, sc.WindowKey())
	default:
		// lifetime, solo, squad have no time predicate
		return scopeIndexPrefix + string(sc.Name)
	}
}

// playerAggregate accumulates one player's totals while scanning a scope.
type playerAggregate struct {
	displayName string
	clanName    string
	kills       int
	deaths      int
	shotsFired  int
	shotsHit    int
	submissions int
	latest      time.Time
}

// FetchScope aggregates the scope's submissions into one row per player.
func (r *redisRepository) FetchScope(ctx context.Context, sc scope.Scope) ([]types.LeaderboardRow, error) {
	if r.limiter != nil && !r.limiter.Allow() {
		return nil, fmt.Errorf("%w: scope %s", ErrRateLimited, sc.Name)
	}

	ids, err := r.client.SMembers(ctx, indexKey(sc)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %s index read: %v", ErrScopeUnavailable, sc.Name, err)
	}
	if len(ids) == 0 {
		return []types.LeaderboardRow{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, submissionKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s submission read: %v", ErrScopeUnavailable, sc.Name, err)
	}

	byPlayer := make(map[string]*playerAggregate)
	for _, cmd := range cmds {
		raw, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Index member outlived its submission record; skip.
				continue
			}
			return nil, fmt.Errorf("%w: %s submission read: %v", ErrScopeUnavailable, sc.Name, err)
		}
		var sub model.Submission
		if err := json.Unmarshal([]byte(raw), &sub); err != nil {
			return nil, fmt.Errorf("%w: %s submission decode: %v", ErrScopeUnavailable, sc.Name, err)
		}

		key := strings.ToLower(sub.PlayerName)
		agg, ok := byPlayer[key]
		if !ok {
			agg = &playerAggregate{displayName: sub.PlayerName}
			byPlayer[key] = agg
		}
		agg.kills += sub.Kills
		agg.deaths += sub.Deaths
		agg.shotsFired += sub.ShotsFired
		agg.shotsHit += sub.ShotsHit
		agg.submissions++
		if sub.SubmittedAt.After(agg.latest) {
			agg.latest = sub.SubmittedAt
			agg.displayName = sub.PlayerName
		}
		if sub.ClanName != "" {
			agg.clanName = sub.ClanName
		}
	}

	rows := make([]types.LeaderboardRow, 0, len(byPlayer))
	for _, agg := range byPlayer {
		rows = append(rows, types.LeaderboardRow{
			PlayerName:  agg.displayName,
			ClanName:    agg.clanName,
			Kills:       agg.kills,
			Deaths:      agg.deaths,
			ShotsFired:  agg.shotsFired,
			ShotsHit:    agg.shotsHit,
			Accuracy:    FormatAccuracy(agg.shotsHit, agg.shotsFired),
			Submissions: agg.submissions,
			SubmittedAt: agg.latest.UTC(),
		})
	}
	// Map iteration order is random; give downstream stable sorts a
	// deterministic base order.
	sort.Slice(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].PlayerName) < strings.ToLower(rows[j].PlayerName)
	})
	return rows, nil
}

// RecordSubmission stores the submission and indexes it into its day, week
// and month windows, the lifetime union, and its mode bucket.
func (r *redisRepository) RecordSubmission(ctx context.Context, sub *model.Submission) error {
	if sub == nil {
		return fmt.Errorf("%w: nil", ErrInvalidSubmission)
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if !sub.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidSubmission, *sub)
	}

	raw, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	at := sub.SubmittedAt
	pipe := r.client.Pipeline()
	pipe.Set(ctx, submissionKeyPrefix+sub.ID, raw, 0)
	pipe.SAdd(ctx, indexKey(scope.New(scope.Day, at)), sub.ID)
	pipe.SAdd(ctx, indexKey(scope.New(scope.Week, at)), sub.ID)
	pipe.SAdd(ctx, indexKey(scope.New(scope.Month, at)), sub.ID)
	pipe.SAdd(ctx, indexKey(scope.New(scope.Lifetime, at)), sub.ID)
	pipe.SAdd(ctx, scopeIndexPrefix+sub.Mode, sub.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// CountSubmissions returns the size of the lifetime index.
func (r *redisRepository) CountSubmissions(ctx context.Context) (int64, error) {
	n, err := r.client.SCard(ctx, scopeIndexPrefix+string(scope.Lifetime)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}

// FormatAccuracy renders hit/fired as a one-decimal percentage string,
// "0.0%" when nothing was fired.
func FormatAccuracy(hit, fired int) string {
	if fired == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(hit)/float64(fired)*100)
}
