package average_test

import (
	"testing"

	average "github.com/reaperclan/ladder/internal/domain/average"
	"github.com/reaperclan/ladder/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWithAverages(t *testing.T) {
	Convey("Given aggregated lifetime rows", t, func() {
		rows := []types.LeaderboardRow{
			{PlayerName: "alice", Kills: 30, Deaths: 10, ShotsFired: 300, ShotsHit: 150, Submissions: 4},
			{PlayerName: "bob", Kills: 7, Deaths: 3, ShotsFired: 0, ShotsHit: 0, Submissions: 2},
		}

		Convey("When deriving averages", func() {
			out := average.WithAverages(rows)

			Convey("Then each average is the total over that player's own count", func() {
				So(*out[0].AvgKills, ShouldEqual, 7.5)
				So(*out[0].AvgDeaths, ShouldEqual, 2.5)
				So(*out[0].AvgShotsFired, ShouldEqual, 75.0)
				So(*out[0].AvgShotsHit, ShouldEqual, 37.5)

				So(*out[1].AvgKills, ShouldEqual, 3.5)
				So(*out[1].AvgShotsFired, ShouldEqual, 0.0)
			})

			Convey("And raw totals are preserved alongside", func() {
				So(out[0].Kills, ShouldEqual, 30)
				So(out[0].Submissions, ShouldEqual, 4)
			})

			Convey("And the input rows are not mutated", func() {
				So(rows[0].AvgKills, ShouldBeNil)
				So(rows[1].AvgKills, ShouldBeNil)
			})
		})
	})

	Convey("Given a row reporting zero submissions", t, func() {
		rows := []types.LeaderboardRow{
			{PlayerName: "ghost", Kills: 5, Submissions: 0},
		}

		Convey("When deriving averages", func() {
			out := average.WithAverages(rows)

			Convey("Then the row passes through without division", func() {
				So(out[0].AvgKills, ShouldBeNil)
				So(out[0].AvgDeaths, ShouldBeNil)
				So(out[0].Kills, ShouldEqual, 5)
			})
		})
	})

	Convey("Given an empty input", t, func() {
		out := average.WithAverages(nil)
		So(out, ShouldNotBeNil)
		So(out, ShouldHaveLength, 0)
	})
}
