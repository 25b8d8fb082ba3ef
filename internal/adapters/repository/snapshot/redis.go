package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/reaperclan/ladder/internal/domain/types"
)

const (
	stateKeyPrefix   = "ranking:state:"
	historyKeyPrefix = "ranking:history:"
	guardKeyPrefix   = "ranking:guard:"

	// Guard keys only need to outlive their UTC day; 48h covers clock skew.
	guardTTL = 48 * time.Hour
)

// ErrStateNotFound is returned when a user has no ranking state yet.
var ErrStateNotFound = errors.New("ranking state not found")

// Config holds configuration for the Redis snapshot repository.
type Config struct {
	// RedisClient is the shared Redis client.
	RedisClient *redis.Client

	// DailyGuard enables the server-side idempotency check: at most one
	// history append per user per UTC calendar day. Off by default to match
	// the original client-guard-only behavior.
	DailyGuard bool
}

// redisRepository implements Repository on Redis.
type redisRepository struct {
	client     *redis.Client
	dailyGuard bool
}

// NewRedis creates a Redis-backed snapshot repository.
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
		client:     cfg.RedisClient,
		dailyGuard: cfg.DailyGuard,
	}, nil
}

// RecordSnapshot upserts state and appends one history entry.
func (r *redisRepository) RecordSnapshot(ctx context.Context, in *RecordSnapshotInput) (*RecordSnapshotOutput, error) {
	if in == nil || in.UserID == "" {
		return nil, errors.New("input and user ID cannot be empty")
	}
	if len(in.Entries) == 0 {
		// Viewer has no row in any identity-bearing scope; nothing to write.
		return &RecordSnapshotOutput{Written: false}, nil
	}

	at := in.Time
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	if r.dailyGuard {
		guardKey := fmt.Sprintf("%s%s:%s", guardKeyPrefix, in.UserID, at.Format("2006-01-02"))
		ok, err := r.client.SetNX(ctx, guardKey, 1, guardTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check snapshot guard: %w", err)
		}
		if !ok {
			return &RecordSnapshotOutput{Written: false, Guarded: true}, nil
		}
	}

	snap := &types.ProfileSnapshot{
		ID:        uuid.New().String(),
		UserID:    in.UserID,
		DiscordID: in.DiscordID,
		Time:      at,
		Profile:   in.Entries,
	}
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// History lives in its own list; the state document carries only the
	// last known profile.
	state := types.UserRankingState{
		UserID:      in.UserID,
		DiscordID:   in.DiscordID,
		LastProfile: in.Entries,
		LastUpdated: at,
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ranking state: %w", err)
	}

	// Last-write-wins on the state key; the append is never lost.
	pipe := r.client.Pipeline()
	pipe.Set(ctx, stateKeyPrefix+in.UserID, stateJSON, 0)
	pipe.RPush(ctx, historyKeyPrefix+in.UserID, snapJSON)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}

	return &RecordSnapshotOutput{Written: true, Snapshot: snap}, nil
}

// GetState returns the state document with the history list attached.
func (r *redisRepository) GetState(ctx context.Context, userID string) (*types.UserRankingState, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}

	raw, err := r.client.Get(ctx, stateKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get ranking state: %w", err)
	}
	var state types.UserRankingState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ranking state: %w", err)
	}

	items, err := r.client.LRange(ctx, historyKeyPrefix+userID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot history: %w", err)
	}
	state.History = make([]types.ProfileSnapshot, 0, len(items))
	for _, item := range items {
		var snap types.ProfileSnapshot
		if err := json.Unmarshal([]byte(item), &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		state.History = append(state.History, snap)
	}
	return &state, nil
}
