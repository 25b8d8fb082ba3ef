// Package ranking sorts leaderboard rows by a caller-chosen field and
// assigns dense 1-based ranks.
//
// Sorting is stable so that ties keep their pre-sort relative order and
// repeated calls over unordered backing stores stay deterministic. Numeric-
// looking string fields (accuracy percentages) are compared numerically after
// stripping their non-numeric suffix; anything non-numeric falls back to
// case-insensitive lexicographic comparison.
package ranking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/reaperclan/ladder/internal/domain/types"
)

// Field enumerates the sortable row fields.
type Field string

// The fixed sortable field set.
const (
	FieldKills         Field = "kills"
	FieldAccuracy      Field = "accuracy"
	FieldShotsFired    Field = "shots_fired"
	FieldShotsHit      Field = "shots_hit"
	FieldDeaths        Field = "deaths"
	FieldPlayerName    Field = "player_name"
	FieldClanName      Field = "clan_name"
	FieldSubmittedAt   Field = "submitted_at"
	FieldAvgKills      Field = "avg_kills"
	FieldAvgDeaths     Field = "avg_deaths"
	FieldAvgShotsFired Field = "avg_shots_fired"
	FieldAvgShotsHit   Field = "avg_shots_hit"
)

// ParseField validates a sort field name.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FieldKills, FieldAccuracy, FieldShotsFired, FieldShotsHit, FieldDeaths,
		FieldPlayerName, FieldClanName, FieldSubmittedAt,
		FieldAvgKills, FieldAvgDeaths, FieldAvgShotsFired, FieldAvgShotsHit:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Direction is the sort direction.
type Direction string

// Sort directions. Desc fully reverses the ascending order, ties included.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection validates a sort direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Rank returns a new slice sorted by the given field and direction, with
// Rank set to the 1-based position in the final order. Ranks are dense and
// contiguous: exactly 1..n for n input rows, ties receiving distinct
// consecutive ranks. An empty input yields an empty, non-nil slice.
func Rank(rows []types.LeaderboardRow, by Field, dir Direction) []types.LeaderboardRow {
	ranked := make([]types.LeaderboardRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(sortValue(ranked[i], by), sortValue(ranked[j], by))
	})
	if dir == Desc {
		for i, j := 0, len(ranked)-1; i < j; i, j = i+1, j-1 {
			ranked[i], ranked[j] = ranked[j], ranked[i]
		}
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// sortValue renders the sort key for a row as a string; the comparator
// decides between numeric and lexicographic interpretation.
func sortValue(r types.LeaderboardRow, f Field) string {
	switch f {
	case FieldKills:
		return strconv.Itoa(r.Kills)
	case FieldAccuracy:
		return r.Accuracy
	case FieldShotsFired:
		return strconv.Itoa(r.ShotsFired)
	case FieldShotsHit:
		return strconv.Itoa(r.ShotsHit)
	case FieldDeaths:
		return strconv.Itoa(r.Deaths)
	case FieldPlayerName:
		return r.PlayerName
	case FieldClanName:
		return r.ClanName
	case FieldSubmittedAt:
		return r.SubmittedAt.UTC().Format(time.RFC3339Nano)
	case FieldAvgKills:
		return floatValue(r.AvgKills)
	case FieldAvgDeaths:
		return floatValue(r.AvgDeaths)
	case FieldAvgShotsFired:
		return floatValue(r.AvgShotsFired)
	case FieldAvgShotsHit:
		return floatValue(r.AvgShotsHit)
	}
	return ""
}

func floatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// less orders two rendered sort keys: numerically when both parse after
// suffix stripping, otherwise case-insensitively as strings.
func less(a, b string) bool {
	na, aok := numericPrefix(a)
	nb, bok := numericPrefix(b)
	if aok && bok {
		if na != nb {
			return na < nb
		}
		return false // equal keys: stable sort keeps input order
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

// numericPrefix strips trailing non-numeric characters ("%", units) and
// parses the remainder as a float. Returns false when no numeric prefix
// exists.
func numericPrefix(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for i, c := range s {
		if c >= '0' && c <= '9' || c == '.' || (i == 0 && (c == '-' || c == '+')) {
			end = i + 1
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
