package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// SourceRequest contains the fields the API accepts for a new source.
type SourceRequest struct {
	Name      string   `json:"name"`
	URL       string   `json:"url"`
	Selectors []string `json:"selectors"`
	Currency  string   `json:"currency,omitempty"`
	Active    *bool    `json:"active,omitempty"`
}

// SourcePatch contains the source fields to change.
type SourcePatch struct {
	Name      *string   `json:"name,omitempty"`
	URL       *string   `json:"url,omitempty"`
	Selectors *[]string `json:"selectors,omitempty"`
	Currency  *string   `json:"currency,omitempty"`
	Active    *bool     `json:"active,omitempty"`
}

func sourcePath(itemID, sourceID string) string {
	return fmt.Sprintf("/api/v1/items/%s/sources/%s", url.PathEscape(itemID), url.PathEscape(sourceID))
}

// AddSource attaches a source to an item.
func (c *Client) AddSource(ctx context.Context, itemID string, req *SourceRequest) (*domain.Source, error) {
	var src domain.Source
	path := fmt.Sprintf("/api/v1/items/%s/sources", url.PathEscape(itemID))
	if err := c.post(ctx, path, req, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// UpdateSource changes the fields set in patch.
func (c *Client) UpdateSource(ctx context.Context, itemID, sourceID string, patch *SourcePatch) (*domain.Source, error) {
	var src domain.Source
	if err := c.patch(ctx, sourcePath(itemID, sourceID), patch, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// RemoveSource deletes a source with its history and alerts.
func (c *Client) RemoveSource(ctx context.Context, itemID, sourceID string) error {
	return c.del(ctx, sourcePath(itemID, sourceID), nil)
}

// SetPrice records a manual price for a source.
func (c *Client) SetPrice(ctx context.Context, itemID, sourceID string, price decimal.Decimal) (*domain.Source, error) {
	var src domain.Source
	body := map[string]decimal.Decimal{"price": price}
	if err := c.put(ctx, sourcePath(itemID, sourceID)+"/price", body, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// RefreshSource fetches and extracts a source's price now.
func (c *Client) RefreshSource(ctx context.Context, itemID, sourceID string) (*domain.ExtractionResult, error) {
	var res domain.ExtractionResult
	if err := c.post(ctx, sourcePath(itemID, sourceID)+"/refresh", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
