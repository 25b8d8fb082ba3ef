package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	snapshotrepo "github.com/reaperclan/ladder/internal/adapters/repository/snapshot"
	statsrepo "github.com/reaperclan/ladder/internal/adapters/repository/stats"
	service "github.com/reaperclan/ladder/internal/app"
	"github.com/reaperclan/ladder/internal/domain/model"
	"github.com/reaperclan/ladder/internal/domain/ranking"
	"github.com/reaperclan/ladder/internal/domain/scope"
	"github.com/reaperclan/ladder/internal/domain/types"
	"github.com/reaperclan/ladder/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeStats serves canned rows per scope and fails the scopes listed in fail.
type fakeStats struct {
	mu      sync.Mutex
	rows    map[scope.Name][]types.LeaderboardRow
	fail    map[scope.Name]error
	fetched []scope.Name
}

func (f *fakeStats) FetchScope(_ context.Context, sc scope.Scope) ([]types.LeaderboardRow, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, sc.Name)
	f.mu.Unlock()

	if err, ok := f.fail[sc.Name]; ok {
		return nil, err
	}
	return f.rows[sc.Name], nil
}

func (f *fakeStats) RecordSubmission(context.Context, *model.Submission) error { return nil }
func (f *fakeStats) CountSubmissions(context.Context) (int64, error)           { return 0, nil }

// fakeSnapshots records inputs and replays a canned output.
type fakeSnapshots struct {
	mu     sync.Mutex
	inputs []*snapshotrepo.RecordSnapshotInput
	states map[string]*types.UserRankingState
}

func (f *fakeSnapshots) RecordSnapshot(_ context.Context, in *snapshotrepo.RecordSnapshotInput) (*snapshotrepo.RecordSnapshotOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if len(in.Entries) == 0 {
		return &snapshotrepo.RecordSnapshotOutput{Written: false}, nil
	}
	return &snapshotrepo.RecordSnapshotOutput{Written: true}, nil
}

func (f *fakeSnapshots) GetState(_ context.Context, userID string) (*types.UserRankingState, error) {
	if st, ok := f.states[userID]; ok {
		return st, nil
	}
	return nil, snapshotrepo.ErrStateNotFound
}

func newService(stats *fakeStats, snaps *fakeSnapshots) *service.Service {
	svc := service.New(service.WithRepositories(stats, snaps))
	_ = svc.Start(context.Background())
	return svc
}

func row(name string, kills, subs int) types.LeaderboardRow {
	return types.LeaderboardRow{PlayerName: name, Kills: kills, Submissions: subs}
}

func TestAggregate(t *testing.T) {
	Convey("Given a service over six healthy scopes", t, func() {
		stats := &fakeStats{rows: map[scope.Name][]types.LeaderboardRow{
			scope.Day:      {row("alice", 2, 1), row("bob", 5, 1)},
			scope.Week:     {row("alice", 9, 3)},
			scope.Month:    {row("alice", 12, 4), row("bob", 20, 5)},
			scope.Lifetime: {row("alice", 40, 8), row("bob", 90, 10)},
			scope.Solo:     {row("alice", 25, 5)},
			scope.Squad:    {row("bob", 70, 6)},
		}}
		svc := newService(stats, &fakeSnapshots{})
		defer svc.Stop()

		Convey("When aggregating every scope sorted by kills desc", func() {
			results := svc.Aggregate(context.Background(), service.AggregateRequest{
				Scopes:  scope.All(),
				SortBy:  ranking.FieldKills,
				SortDir: ranking.Desc,
			})

			Convey("Then every scope settles with ranked rows", func() {
				So(results, ShouldHaveLength, 6)
				for _, name := range scope.All() {
					res := results[name]
					So(res.Error, ShouldBeEmpty)
					for i := range res.Results {
						So(res.Results[i].Rank, ShouldEqual, i+1)
					}
				}
				So(results[scope.Day].Results[0].PlayerName, ShouldEqual, "bob")
				So(results[scope.Day].Results[1].PlayerName, ShouldEqual, "alice")
			})

			Convey("And only lifetime rows carry averages", func() {
				life := results[scope.Lifetime].Results
				So(life[0].AvgKills, ShouldNotBeNil)
				So(*life[0].AvgKills, ShouldEqual, 9.0) // bob: 90 kills / 10 submissions
				So(results[scope.Day].Results[0].AvgKills, ShouldBeNil)
			})

			Convey("And every scope was actually fetched", func() {
				So(stats.fetched, ShouldHaveLength, 6)
			})
		})

		Convey("When aggregating with a row limit", func() {
			results := svc.Aggregate(context.Background(), service.AggregateRequest{
				Scopes:  []scope.Name{scope.Day},
				SortBy:  ranking.FieldKills,
				SortDir: ranking.Desc,
				Limit:   1,
			})

			Convey("Then rows are truncated after ranking", func() {
				So(results[scope.Day].Results, ShouldHaveLength, 1)
				So(results[scope.Day].Results[0].PlayerName, ShouldEqual, "bob")
				So(results[scope.Day].Results[0].Rank, ShouldEqual, 1)
			})
		})
	})

	Convey("Given one failing scope among six", t, func() {
		rows := map[scope.Name][]types.LeaderboardRow{}
		for _, name := range scope.All() {
			rows[name] = []types.LeaderboardRow{row("alice", 3, 1)}
		}
		stats := &fakeStats{
			rows: rows,
			fail: map[scope.Name]error{scope.Week: statsrepo.ErrScopeUnavailable},
		}
		svc := newService(stats, &fakeSnapshots{})
		defer svc.Stop()

		results := svc.Aggregate(context.Background(), service.AggregateRequest{
			Scopes:  scope.All(),
			SortBy:  ranking.FieldKills,
			SortDir: ranking.Desc,
		})

		Convey("Then the failure is isolated to its envelope", func() {
			So(results[scope.Week].Error, ShouldEqual, types.ErrCodeScopeUnavailable)
			So(results[scope.Week].Results, ShouldBeEmpty)
		})

		Convey("And the other five scopes settle normally", func() {
			for _, name := range []scope.Name{scope.Day, scope.Month, scope.Lifetime, scope.Solo, scope.Squad} {
				So(results[name].Error, ShouldBeEmpty)
				So(results[name].Results, ShouldHaveLength, 1)
			}
		})
	})

	Convey("Given a rate-limited store", t, func() {
		stats := &fakeStats{
			fail: map[scope.Name]error{scope.Day: statsrepo.ErrRateLimited},
		}
		svc := newService(stats, &fakeSnapshots{})
		defer svc.Stop()

		results := svc.Aggregate(context.Background(), service.AggregateRequest{
			Scopes:  []scope.Name{scope.Day},
			SortBy:  ranking.FieldKills,
			SortDir: ranking.Desc,
		})

		Convey("Then the envelope carries the rate-limited code", func() {
			So(results[scope.Day].Error, ShouldEqual, types.ErrCodeRateLimited)
		})
	})
}

func TestBuildEntries(t *testing.T) {
	Convey("Given ranked results across all scopes", t, func() {
		results := map[scope.Name]types.ScopeResult{
			scope.Day: {Results: []types.LeaderboardRow{
				{Rank: 1, PlayerName: "Alice"},
			}},
			scope.Solo: {Results: []types.LeaderboardRow{
				{Rank: 1, PlayerName: "bob"},
				{Rank: 2, PlayerName: "ALICE", Kills: 25},
			}},
			scope.Month: {Results: []types.LeaderboardRow{
				{Rank: 3, PlayerName: "alice", Kills: 12},
			}},
			scope.Lifetime: {Error: types.ErrCodeScopeUnavailable},
		}

		Convey("When building entries for the viewer", func() {
			entries := service.BuildEntries("Alice", results)

			Convey("Then only identity-bearing healthy scopes with a match contribute", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Scope, ShouldEqual, "solo")
				So(entries[0].Rank, ShouldEqual, 2)
				So(entries[0].Stats.Kills, ShouldEqual, 25)
				So(entries[1].Scope, ShouldEqual, "month")
				So(entries[1].Rank, ShouldEqual, 3)
			})

			Convey("And matching is case-insensitive", func() {
				So(entries[0].Stats.PlayerName, ShouldEqual, "ALICE")
			})
		})

		Convey("When the display name is empty", func() {
			So(service.BuildEntries("", results), ShouldBeEmpty)
			So(service.BuildEntries("   ", results), ShouldBeEmpty)
		})

		Convey("When the viewer matches nothing", func() {
			So(service.BuildEntries("nobody", results), ShouldBeEmpty)
		})
	})
}

func TestRecordEntries(t *testing.T) {
	Convey("Given a service with a snapshot store", t, func() {
		snaps := &fakeSnapshots{}
		svc := newService(&fakeStats{}, snaps)
		defer svc.Stop()

		identity := types.ViewerIdentity{UserID: "user-1", DiscordID: "discord-1", DisplayName: "Alice"}

		Convey("When recording entries for identity-bearing scopes", func() {
			out, err := svc.RecordEntries(context.Background(), identity, []types.RankingEntry{
				{Scope: "solo", Rank: 2, Stats: &types.LeaderboardRow{}},
				{Scope: "day", Rank: 1, Stats: &types.LeaderboardRow{}},
				{Scope: "bogus", Rank: 7, Stats: &types.LeaderboardRow{}},
				{Scope: "lifetime", Rank: 9, Stats: &types.LeaderboardRow{}},
			})

			Convey("Then non-identity and unknown scopes are filtered out", func() {
				So(err, ShouldBeNil)
				So(out.Written, ShouldBeTrue)
				So(snaps.inputs, ShouldHaveLength, 1)
				So(snaps.inputs[0].UserID, ShouldEqual, "user-1")
				So(snaps.inputs[0].Entries, ShouldHaveLength, 2)
				So(snaps.inputs[0].Entries[0].Scope, ShouldEqual, "solo")
				So(snaps.inputs[0].Entries[1].Scope, ShouldEqual, "lifetime")
			})
		})

		Convey("When no identity-bearing entries remain", func() {
			out, err := svc.RecordEntries(context.Background(), identity, []types.RankingEntry{
				{Scope: "day", Rank: 1, Stats: &types.LeaderboardRow{}},
			})

			Convey("Then the write is a no-op", func() {
				So(err, ShouldBeNil)
				So(out.Written, ShouldBeFalse)
			})
		})

		Convey("When the viewer has no user ID", func() {
			_, err := svc.RecordEntries(context.Background(), types.ViewerIdentity{}, nil)
			So(err, ShouldEqual, service.ErrMissingIdentity)
		})
	})
}

func TestPersistSnapshot(t *testing.T) {
	Convey("Given ranked results containing the viewer", t, func() {
		snaps := &fakeSnapshots{}
		svc := newService(&fakeStats{}, snaps)
		defer svc.Stop()

		results := map[scope.Name]types.ScopeResult{
			scope.Solo: {Results: []types.LeaderboardRow{
				{Rank: 1, PlayerName: "Alice", Kills: 25},
			}},
		}

		Convey("When persisting with a matching display name", func() {
			out, err := svc.PersistSnapshot(context.Background(),
				types.ViewerIdentity{UserID: "user-1", DisplayName: "alice"}, results)

			So(err, ShouldBeNil)
			So(out.Written, ShouldBeTrue)
		})

		Convey("When the viewer matches no row", func() {
			out, err := svc.PersistSnapshot(context.Background(),
				types.ViewerIdentity{UserID: "user-1", DisplayName: "stranger"}, results)

			Convey("Then nothing is written", func() {
				So(err, ShouldBeNil)
				So(out.Written, ShouldBeFalse)
			})
		})
	})
}

func TestProfileState(t *testing.T) {
	Convey("Given stored ranking state", t, func() {
		now := time.Now().UTC()
		snaps := &fakeSnapshots{states: map[string]*types.UserRankingState{
			"user-1": {UserID: "user-1", LastUpdated: now},
		}}
		svc := newService(&fakeStats{}, snaps)
		defer svc.Stop()

		Convey("When reading a known user", func() {
			st, err := svc.ProfileState(context.Background(), "user-1")
			So(err, ShouldBeNil)
			So(st.UserID, ShouldEqual, "user-1")
		})

		Convey("When reading an unknown user", func() {
			_, err := svc.ProfileState(context.Background(), "ghost")
			So(err, ShouldEqual, snapshotrepo.ErrStateNotFound)
		})
	})
}
