package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/levigross/grequests"

	"github.com/okian/juicerank/internal/domain/beatmap"
	"github.com/okian/juicerank/internal/domain/types"
)

// Client talks to the service HTTP API.
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, timeout: timeout}
}

func (c *Client) options(ctx context.Context) *grequests.RequestOptions {
	return &grequests.RequestOptions{
		Context:        ctx,
		RequestTimeout: c.timeout,
		Headers:        map[string]string{"Accept": "application/json"},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := grequests.Get(c.baseURL+"/healthz", c.options(ctx))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer resp.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

// Submit posts one map and classifies the answer.
func (c *Client) Submit(ctx context.Context, b *beatmap.Beatmap) (submission, string) {
	ro := c.options(ctx)
	ro.JSON = b
	resp, err := grequests.Post(c.baseURL+"/beatmaps", ro)
	if err != nil {
		return submission{}, outcomeFailed
	}
	defer resp.Close()

	var sub submission
	switch resp.StatusCode {
	case http.StatusAccepted:
		if err := resp.JSON(&sub); err != nil {
			return sub, outcomeFailed
		}
		return sub, outcomeAccepted
	case http.StatusOK:
		_ = resp.JSON(&sub)
		return sub, outcomeDuplicate
	case http.StatusTooManyRequests:
		return sub, outcomeRefused
	default:
		return sub, outcomeFailed
	}
}

// Job fetches GET /jobs/{id}.
func (c *Client) Job(ctx context.Context, id string) (types.JobStatus, error) {
	var st types.JobStatus
	err := c.getJSON(ctx, "/jobs/"+url.PathEscape(id), &st)
	return st, err
}

// Rank fetches GET /rank/{id}.
func (c *Client) Rank(ctx context.Context, beatmapID string) (types.Entry, error) {
	var e types.Entry
	err := c.getJSON(ctx, "/rank/"+url.PathEscape(beatmapID), &e)
	return e, err
}

// Leaderboard fetches GET /leaderboard?limit=n.
func (c *Client) Leaderboard(ctx context.Context, n int) ([]types.Entry, error) {
	var entries []types.Entry
	err := c.getJSON(ctx, "/leaderboard?limit="+strconv.Itoa(n), &entries)
	return entries, err
}

// Stats fetches GET /stats.
func (c *Client) Stats(ctx context.Context) (types.Stats, error) {
	var st types.Stats
	err := c.getJSON(ctx, "/stats", &st)
	return st, err
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := grequests.Get(c.baseURL+path, c.options(ctx))
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Close()
	if !resp.Ok {
		return fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode, resp.String())
	}
	if err := resp.JSON(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
