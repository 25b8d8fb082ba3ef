// Package viewsync implements the page-level sync controller used by
// profile and leaderboard views.
//
// A controller issues one batched aggregation request for the scopes its
// view needs, re-ranks the fetched rows locally when the user flips the sort
// (no network round trip), and records the viewer's rank snapshot at most
// once for the lifetime of the mounted view.
package viewsync

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	service "github.com/reaperclan/ladder/internal/app"
	"github.com/reaperclan/ladder/internal/domain/gate"
	"github.com/reaperclan/ladder/internal/domain/ranking"
	"github.com/reaperclan/ladder/internal/domain/scope"
	"github.com/reaperclan/ladder/internal/domain/types"
	"github.com/reaperclan/ladder/pkg/logger"
)

// Default controller configuration constants.
const (
	defaultTimeout = 30 * time.Second
	defaultLimit   = 50
)

// Controller drives one mounted view: fetch, local re-sort, snapshot-once.
type Controller struct {
	baseURL  string
	client   *http.Client
	identity types.ViewerIdentity
	scopes   []scope.Name
	sortBy   ranking.Field
	sortDir  ranking.Direction
	limit    int
	logger   logger.Logger

	mu      sync.RWMutex
	results map[scope.Name]types.ScopeResult

	// snapGate is the session guard: one snapshot per view instance,
	// regardless of how often the view refreshes or re-sorts.
	snapGate gate.Gate
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithIdentity sets the viewer identity used for row matching and the
// snapshot write.
func WithIdentity(identity types.ViewerIdentity) Option {
	return func(c *Controller) {
		c.identity = identity
	}
}

// WithScopes sets the scopes the view displays.
func WithScopes(scopes []scope.Name) Option {
	return func(c *Controller) {
		if len(scopes) > 0 {
			c.scopes = scopes
		}
	}
}

// WithSort sets the initial sort key and direction.
func WithSort(by ranking.Field, dir ranking.Direction) Option {
	return func(c *Controller) {
		c.sortBy = by
		c.sortDir = dir
	}
}

// WithLimit caps the rows fetched per scope.
func WithLimit(limit int) Option {
	return func(c *Controller) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a controller for one view against the given service base URL.
func New(baseURL string, opts ...Option) *Controller {
	c := &Controller{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		scopes:  scope.All(),
		sortBy:  ranking.FieldKills,
		sortDir: ranking.Desc,
		limit:   defaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get()
	}
	return c
}

// Sync fetches one batch of scope results and, once both the batch and the
// viewer's display name are available, triggers the snapshot write. A failed
// snapshot write is logged and dropped; it never fails the sync.
func (c *Controller) Sync(ctx context.Context) error {
	fetched, err := c.fetchBatch(ctx)
	if err != nil {
		return fmt.Errorf("batch fetch failed: %w", err)
	}

	c.mu.Lock()
	c.results = fetched
	c.mu.Unlock()

	if c.identity.DisplayName != "" && c.identity.UserID != "" {
		if _, err := c.SnapshotOnce(ctx); err != nil {
			c.logger.Warn(ctx, "snapshot write failed; dropping",
				logger.String("userID", c.identity.UserID),
				logger.Error(err),
			)
		}
	}
	return nil
}

// Resort re-ranks the already-fetched rows under a new sort key without
// another network round trip. Failed scopes keep their error envelopes.
func (c *Controller) Resort(by ranking.Field, dir ranking.Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sortBy = by
	c.sortDir = dir
	for name, res := range c.results {
		if res.Error != "" {
			continue
		}
		c.results[name] = types.ScopeResult{Results: ranking.Rank(res.Results, by, dir)}
	}
}

// Rows returns the current result envelope for a scope. The second return
// is false when the scope was not part of the fetched batch.
func (c *Controller) Rows(name scope.Name) (types.ScopeResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.results[name]
	return res, ok
}

// SnapshotOnce records the viewer's rank snapshot, guarded to fire at most
// once per controller lifetime. Returns true when a snapshot was recorded
// on the server; false for latched, unmatched or no-op calls.
func (c *Controller) SnapshotOnce(ctx context.Context) (bool, error) {
	if !c.snapGate.TryFire() {
		return false, nil
	}

	c.mu.RLock()
	entries := service.BuildEntries(c.identity.DisplayName, c.results)
	c.mu.RUnlock()

	if len(entries) == 0 {
		// Viewer has no row in any identity-bearing scope; nothing to send.
		return false, nil
	}

	status, err := c.postSnapshot(ctx, entries)
	if err != nil {
		return false, err
	}
	return status == "recorded", nil
}

// Snapshotted reports whether the session guard has fired.
func (c *Controller) Snapshotted() bool {
	return c.snapGate.Fired()
}
