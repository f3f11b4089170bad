package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func itemPath(itemID, suffix string) string {
	return fmt.Sprintf("/api/v1/items/%s/%s", url.PathEscape(itemID), suffix)
}

// Comparison returns the item's sources ranked by price, or nil when no
// source has a price yet.
func (c *Client) Comparison(ctx context.Context, itemID string) (*domain.ComparisonSnapshot, error) {
	var resp struct {
		Comparison *domain.ComparisonSnapshot `json:"comparison"`
	}
	if err := c.get(ctx, itemPath(itemID, "comparison"), &resp); err != nil {
		return nil, err
	}
	return resp.Comparison, nil
}

// History returns the item's price points, optionally restricted to one
// source and a trailing window of days.
func (c *Client) History(ctx context.Context, itemID, sourceID string, days int) ([]domain.PricePoint, error) {
	q := url.Values{}
	if sourceID != "" {
		q.Set("source", sourceID)
	}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	path := itemPath(itemID, "history")
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Points []domain.PricePoint `json:"points"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Points, nil
}

// Statistics returns a source's price statistics, or nil when its window
// holds no points.
func (c *Client) Statistics(ctx context.Context, itemID, sourceID string) (*domain.Statistics, error) {
	var resp struct {
		Statistics *domain.Statistics `json:"statistics"`
	}
	if err := c.get(ctx, itemPath(itemID, "sources/"+url.PathEscape(sourceID)+"/statistics"), &resp); err != nil {
		return nil, err
	}
	return resp.Statistics, nil
}

// Recommendation returns the buy/wait decision for an item.
func (c *Client) Recommendation(ctx context.Context, itemID string) (*domain.Recommendation, error) {
	var resp struct {
		Recommendation *domain.Recommendation `json:"recommendation"`
	}
	if err := c.get(ctx, itemPath(itemID, "recommendation"), &resp); err != nil {
		return nil, err
	}
	return resp.Recommendation, nil
}
