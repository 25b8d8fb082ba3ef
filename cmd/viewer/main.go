// Command viewer simulates one leaderboard page visit: a batched fetch for
// every scope, a local re-sort, and the once-per-view snapshot write.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/reaperclan/ladder/internal/domain/ranking"
	"github.com/reaperclan/ladder/internal/domain/scope"
	"github.com/reaperclan/ladder/internal/domain/types"
	"github.com/reaperclan/ladder/internal/viewsync"
	"github.com/reaperclan/ladder/pkg/logger"
)

const defaultVisitTimeout = 60 * time.Second

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		userID      = flag.String("user", "", "Viewer user ID (enables the snapshot write)")
		discordID   = flag.String("discord", "", "Viewer Discord ID")
		displayName = flag.String("name", "", "Viewer display name used for row matching")
		sortBy      = flag.String("sort", "kills", "Sort field")
		sortDir     = flag.String("dir", "desc", "Sort direction (asc or desc)")
		limit       = flag.Int("limit", 25, "Rows per scope")
		resort      = flag.String("resort", "", "Optional second sort field applied locally")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	by, err := ranking.ParseField(*sortBy)
	if err != nil {
		os.Stderr.WriteString("invalid sort field: " + err.Error() + "\n")
		return
	}
	dir, err := ranking.ParseDirection(*sortDir)
	if err != nil {
		os.Stderr.WriteString("invalid sort direction: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultVisitTimeout)
	defer cancel()

	ctrl := viewsync.New(*baseURL,
		viewsync.WithIdentity(types.ViewerIdentity{
			UserID:      *userID,
			DiscordID:   *discordID,
			DisplayName: *displayName,
		}),
		viewsync.WithSort(by, dir),
		viewsync.WithLimit(*limit),
	)

	if err := ctrl.Sync(ctx); err != nil {
		os.Stderr.WriteString("sync failed: " + err.Error() + "\n")
		return
	}

	for _, name := range scope.All() {
		printScope(ctrl, name)
	}

	if *resort != "" {
		by2, err := ranking.ParseField(*resort)
		if err != nil {
			os.Stderr.WriteString("invalid resort field: " + err.Error() + "\n")
			return
		}
		ctrl.Resort(by2, dir)
		fmt.Printf("\n--- re-sorted locally by %s ---\n", *resort)
		for _, name := range scope.All() {
			printScope(ctrl, name)
		}
	}

	if ctrl.Snapshotted() {
		fmt.Println("\nsnapshot latch fired for this view")
	}
}

func printScope(ctrl *viewsync.Controller, name scope.Name) {
	res, ok := ctrl.Rows(name)
	if !ok {
		return
	}
	fmt.Printf("\n== %s ==\n", name)
	if res.Error != "" {
		fmt.Printf("  unavailable (%s)\n", res.Error)
		return
	}
	for _, row := range res.Results {
		fmt.Printf("  %3d. %-16s kills=%-4d deaths=%-4d acc=%s\n",
			row.Rank, row.PlayerName, row.Kills, row.Deaths, row.Accuracy)
	}
}
