// Package average derives per-player lifetime averages from aggregated rows.
package average

import "github.com/reaperclan/ladder/internal/domain/types"

// WithAverages returns a copy of rows with the four average fields filled in:
// each total divided by that player's own qualifying submission count. Rows
// keep their raw totals; display layers choose which to show.
//
// A player with zero submissions has no row at all, so the division is safe
// by construction. Rows that nevertheless report a zero count are passed
// through untouched rather than divided.
func WithAverages(rows []types.LeaderboardRow) []types.LeaderboardRow {
	out := make([]types.LeaderboardRow, len(rows))
	copy(out, rows)
	for i := range out {
		n := out[i].Submissions
		if n <= 0 {
			continue
		}
		out[i].AvgKills = ratio(out[i].Kills, n)
		out[i].AvgDeaths = ratio(out[i].Deaths, n)
		out[i].AvgShotsFired = ratio(out[i].ShotsFired, n)
		out[i].AvgShotsHit = ratio(out[i].ShotsHit, n)
	}
	return out
}

func ratio(total, count int) *float64 {
	v := float64(total) / float64(count)
	return &v
}
