package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

type alertRequest struct {
	SourceID    string                `json:"source_id"`
	TargetPrice decimal.Decimal       `json:"target_price"`
	Condition   domain.AlertCondition `json:"condition"`
}

func alertPath(itemID, alertID string) string {
	return fmt.Sprintf("/api/v1/items/%s/alerts/%s", url.PathEscape(itemID), url.PathEscape(alertID))
}

// AddAlert creates an alert on one of the item's sources.
func (c *Client) AddAlert(
	ctx context.Context,
	itemID, sourceID string,
	target decimal.Decimal,
	cond domain.AlertCondition,
) (*domain.Alert, error) {
	var a domain.Alert
	req := alertRequest{SourceID: sourceID, TargetPrice: target, Condition: cond}
	if err := c.post(ctx, fmt.Sprintf("/api/v1/items/%s/alerts", url.PathEscape(itemID)), req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// RemoveAlert deletes an alert.
func (c *Client) RemoveAlert(ctx context.Context, itemID, alertID string) error {
	return c.del(ctx, alertPath(itemID, alertID), nil)
}

// ToggleAlert flips an alert between active and inactive.
func (c *Client) ToggleAlert(ctx context.Context, itemID, alertID string) (*domain.Alert, error) {
	var a domain.Alert
	if err := c.post(ctx, alertPath(itemID, alertID)+"/toggle", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
