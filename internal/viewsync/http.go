package viewsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/reaperclan/ladder/internal/domain/scope"
	"github.com/reaperclan/ladder/internal/domain/types"
)

// fetchBatch issues the one batched GET /leaderboard call for the view.
func (c *Controller) fetchBatch(ctx context.Context) (map[scope.Name]types.ScopeResult, error) {
	names := make([]string, len(c.scopes))
	for i, n := range c.scopes {
		names[i] = string(n)
	}

	q := url.Values{}
	q.Set("scopes", strings.Join(names, ","))
	q.Set("sort_by", string(c.sortBy))
	q.Set("sort_dir", string(c.sortDir))
	q.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/leaderboard?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var raw map[string]types.ScopeResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode batch response: %w", err)
	}

	results := make(map[scope.Name]types.ScopeResult, len(raw))
	for key, res := range raw {
		name, err := scope.Parse(key)
		if err != nil {
			// Unknown scope key from a newer server; ignore.
			continue
		}
		results[name] = res
	}
	return results, nil
}

// postSnapshot sends the viewer's entries to the snapshot write endpoint and
// returns the reported status.
func (c *Controller) postSnapshot(ctx context.Context, entries []types.RankingEntry) (string, error) {
	payload, err := json.Marshal(struct {
		Entries []types.RankingEntry `json:"entries"`
	}{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rankings", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", c.identity.UserID)
	if c.identity.DiscordID != "" {
		req.Header.Set("X-Discord-ID", c.identity.DiscordID)
	}
	if c.identity.DisplayName != "" {
		req.Header.Set("X-Display-Name", c.identity.DisplayName)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	body, err := readBody(resp)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var ack struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		return "", fmt.Errorf("failed to decode snapshot response: %w", err)
	}
	return ack.Status, nil
}

// readBody reads and closes the response body.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
