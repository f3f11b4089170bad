package client

import (
	"context"
	"encoding/json"
	"time"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// SchedulerStatus mirrors the server's scheduler report.
type SchedulerStatus struct {
	Running     bool                 `json:"running"`
	Interval    string               `json:"interval"`
	NextRun     *time.Time           `json:"next_run,omitempty"`
	LastRun     *time.Time           `json:"last_run,omitempty"`
	LastSummary *domain.BatchSummary `json:"last_summary,omitempty"`
}

// ExtractRequest asks the server to extract a price from markup or a URL.
type ExtractRequest struct {
	Markup    string   `json:"markup,omitempty"`
	URL       string   `json:"url,omitempty"`
	Selectors []string `json:"selectors,omitempty"`
}

// RefreshAll triggers an immediate refresh of every active source.
func (c *Client) RefreshAll(ctx context.Context) (*domain.BatchSummary, error) {
	var s domain.BatchSummary
	if err := c.post(ctx, "/api/v1/refresh", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SchedulerStatus returns the state of the periodic refresh.
func (c *Client) SchedulerStatus(ctx context.Context) (*SchedulerStatus, error) {
	var s SchedulerStatus
	if err := c.get(ctx, "/api/v1/scheduler", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Extract runs the extraction pipeline on the server without saving.
func (c *Client) Extract(ctx context.Context, req *ExtractRequest) (*domain.ExtractionResult, error) {
	var res domain.ExtractionResult
	if err := c.post(ctx, "/api/v1/extract", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Export downloads the whole data document.
func (c *Client) Export(ctx context.Context) (json.RawMessage, error) {
	var doc json.RawMessage
	if err := c.get(ctx, "/api/v1/export", &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Import replaces the server's data with doc.
func (c *Client) Import(ctx context.Context, doc json.RawMessage) (items, categories int, err error) {
	var resp struct {
		Items      int `json:"items"`
		Categories int `json:"categories"`
	}
	if err := c.post(ctx, "/api/v1/import", doc, &resp); err != nil {
		return 0, 0, err
	}
	return resp.Items, resp.Categories, nil
}

// Quota reports the server's page fetch budget.
type Quota struct {
	DailyLimit int64      `json:"daily_limit"`
	DailyUsed  int64      `json:"daily_used"`
	Remaining  int64      `json:"remaining"`
	ResetAt    *time.Time `json:"reset_at,omitempty"`
	Exhausted  bool       `json:"exhausted"`
	PerSecond  float64    `json:"per_second"`
}

// Quota returns the fetch budget of the current daily window.
func (c *Client) Quota(ctx context.Context) (*Quota, error) {
	var q Quota
	if err := c.get(ctx, "/api/v1/quota", &q); err != nil {
		return nil, err
	}
	return &q, nil
}
