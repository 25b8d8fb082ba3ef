// Command seed-stats writes randomized stat submissions straight into the
// backing Redis store. Useful for exercising the leaderboard endpoints
// against a realistic dataset during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	statsrepo "github.com/reaperclan/ladder/internal/adapters/repository/stats"
	"github.com/reaperclan/ladder/internal/domain/model"
)

// Default configuration constants.
const (
	defaultCount   = 500
	defaultPlayers = 40
	defaultDays    = 45
	defaultTimeout = 2 * time.Minute
)

var clanNames = []string{
	"Reaper Clan", "Night Watch", "Iron Banner", "Ghost Unit", "",
}

func main() {
	var (
		redisAddr     = flag.String("redis", "localhost:6379", "Redis address")
		redisPassword = flag.String("password", "", "Redis password")
		redisDB       = flag.Int("db", 0, "Redis database")
		count         = flag.Int("count", defaultCount, "Number of submissions to generate")
		players       = flag.Int("players", defaultPlayers, "Number of distinct players")
		days          = flag.Int("days", defaultDays, "Spread submissions over this many past days")
		seed          = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:     *redisAddr,
		Password: *redisPassword,
		DB:       *redisDB,
	})
	defer client.Close()

	repo, err := statsrepo.NewRedis(&statsrepo.Config{RedisClient: client})
	if err != nil {
		os.Stderr.WriteString("failed to connect: " + err.Error() + "\n")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	now := time.Now().UTC()

	for i := 0; i < *count; i++ {
		sub := randomSubmission(rng, *players, *days, now)
		if err := repo.RecordSubmission(ctx, sub); err != nil {
			os.Stderr.WriteString("failed to record submission: " + err.Error() + "\n")
			os.Exit(1)
		}
	}

	total, err := repo.CountSubmissions(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to count submissions: " + err.Error() + "\n")
		os.Exit(1)
	}
	fmt.Printf("seeded %d submissions (%d total in store)\n", *count, total)
}

// randomSubmission builds one plausible submission. ShotsHit never exceeds
// ShotsFired, and a small fraction of submissions fire nothing at all to
// cover the zero-accuracy path.
func randomSubmission(rng *rand.Rand, players, days int, now time.Time) *model.Submission {
	name := fmt.Sprintf("player%02d", rng.Intn(players))
	mode := model.ModeSolo
	if rng.Intn(2) == 1 {
		mode = model.ModeSquad
	}

	fired := 0
	hit := 0
	if rng.Intn(10) > 0 {
		fired = 20 + rng.Intn(400)
		hit = rng.Intn(fired + 1)
	}

	at := now.Add(-time.Duration(rng.Intn(days*24)) * time.Hour)

	return &model.Submission{
		PlayerName:  name,
		ClanName:    clanNames[rng.Intn(len(clanNames))],
		Kills:       rng.Intn(30),
		Deaths:      rng.Intn(20),
		ShotsFired:  fired,
		ShotsHit:    hit,
		Mode:        mode,
		SubmittedAt: at,
	}
}
