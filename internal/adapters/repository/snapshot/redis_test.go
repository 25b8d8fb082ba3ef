package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/reaperclan/ladder/internal/domain/types"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	repo    Repository
	testNow time.Time
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func entries(rank int) []types.RankingEntry {
	return []types.RankingEntry{
		{
			Scope: "solo",
			Rank:  rank,
			Stats: &types.LeaderboardRow{Rank: rank, PlayerName: "Alice", Kills: 12, Accuracy: "48.0%"},
		},
		{
			Scope: "lifetime",
			Rank:  rank + 1,
			Stats: &types.LeaderboardRow{Rank: rank + 1, PlayerName: "Alice", Kills: 300, Accuracy: "51.2%"},
		},
	}
}

func (s *RedisRepositoryTestSuite) TestRecordAndGetState() {
	out, err := s.repo.RecordSnapshot(context.Background(), &RecordSnapshotInput{
		UserID:    "user-1",
		DiscordID: "discord-1",
		Entries:   entries(3),
		Time:      s.testNow,
	})
	s.Require().NoError(err)
	s.Require().True(out.Written)
	s.False(out.Guarded)
	s.Require().NotNil(out.Snapshot)
	s.NotEmpty(out.Snapshot.ID)
	s.Equal("user-1", out.Snapshot.UserID)

	state, err := s.repo.GetState(context.Background(), "user-1")
	s.Require().NoError(err)
	s.Equal("user-1", state.UserID)
	s.Equal("discord-1", state.DiscordID)
	s.Require().Len(state.LastProfile, 2)
	s.Equal("solo", state.LastProfile[0].Scope)
	s.Equal(3, state.LastProfile[0].Rank)
	s.True(state.LastUpdated.Equal(s.testNow))
	s.Require().Len(state.History, 1)
	s.Equal(out.Snapshot.ID, state.History[0].ID)
}

func (s *RedisRepositoryTestSuite) TestHistoryIsAppendOnly() {
	for i, rank := range []int{9, 5, 2} {
		_, err := s.repo.RecordSnapshot(context.Background(), &RecordSnapshotInput{
			UserID:  "user-1",
			Entries: entries(rank),
			Time:    s.testNow.Add(time.Duration(i) * time.Hour),
		})
		s.Require().NoError(err)
	}

	state, err := s.repo.GetState(context.Background(), "user-1")
	s.Require().NoError(err)

	// State reflects the last write; history keeps every snapshot in order.
	s.Equal(2, state.LastProfile[0].Rank)
	s.Require().Len(state.History, 3)
	s.Equal(9, state.History[0].Profile[0].Rank)
	s.Equal(5, state.History[1].Profile[0].Rank)
	s.Equal(2, state.History[2].Profile[0].Rank)
}

func (s *RedisRepositoryTestSuite) TestEmptyEntriesIsNoop() {
	out, err := s.repo.RecordSnapshot(context.Background(), &RecordSnapshotInput{
		UserID: "user-1",
		Time:   s.testNow,
	})
	s.Require().NoError(err)
	s.False(out.Written)
	s.Nil(out.Snapshot)

	// A no-op leaves no state behind.
	_, err = s.repo.GetState(context.Background(), "user-1")
	s.ErrorIs(err, ErrStateNotFound)
}

func (s *RedisRepositoryTestSuite) TestMissingUserID() {
	_, err := s.repo.RecordSnapshot(context.Background(), &RecordSnapshotInput{
		Entries: entries(1),
	})
	s.Require().Error(err)

	_, err = s.repo.GetState(context.Background(), "")
	s.Require().Error(err)
}

func (s *RedisRepositoryTestSuite) TestStateNotFound() {
	_, err := s.repo.GetState(context.Background(), "nobody")
	s.ErrorIs(err, ErrStateNotFound)
}

func (s *RedisRepositoryTestSuite) TestDailyGuardSuppressesSecondWrite() {
	repo, err := NewRedis(&Config{
		RedisClient: s.client,
		DailyGuard:  true,
	})
	s.Require().NoError(err)

	first, err := repo.RecordSnapshot(context.Background(), &RecordSnapshotInput{
		UserID:  "user-1",
		Entries: entries(4),
		Time:    s.testNow,
	})
	s.Require().NoError(err)
	s.True(first.Written)

	// Same user, same UTC day: suppressed.
	second, err := repo.RecordSnapshot(context.Background(), &RecordSnapshotInput{
		UserID:  "user-1",
		Entries: entries(4),
		Time:    s.testNow.Add(5 * time.Hour),
	})
	s.Require().NoError(err)
	s.False(second.Written)
	s.True(second.Guarded)

	// Next UTC day: allowed again.
	third, err := repo.RecordSnapshot(context.Background(), &RecordSnapshotInput{
		UserID:  "user-1",
		Entries: entries(4),
		Time:    s.testNow.AddDate(0, 0, 1),
	})
	s.Require().NoError(err)
	s.True(third.Written)

	// A different user the same day is unaffected.
	other, err := repo.RecordSnapshot(context.Background(), &RecordSnapshotInput{
		UserID:  "user-2",
		Entries: entries(4),
		Time:    s.testNow,
	})
	s.Require().NoError(err)
	s.True(other.Written)

	state, err := repo.GetState(context.Background(), "user-1")
	s.Require().NoError(err)
	s.Len(state.History, 2)
}
