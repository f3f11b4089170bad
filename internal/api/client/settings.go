package client

import (
	"context"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// SettingsPatch contains the settings fields to change.
type SettingsPatch struct {
	DefaultCurrency      *string       `json:"default_currency,omitempty"`
	UpdateIntervalMs     *int64        `json:"update_interval_ms,omitempty"`
	NotificationsEnabled *bool         `json:"notifications_enabled,omitempty"`
	Theme                *domain.Theme `json:"theme,omitempty"`
}

// GetSettings returns the runtime settings.
func (c *Client) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var s domain.Settings
	if err := c.get(ctx, "/api/v1/settings", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSettings changes the fields set in patch.
func (c *Client) UpdateSettings(ctx context.Context, patch *SettingsPatch) (*domain.Settings, error) {
	var s domain.Settings
	if err := c.patch(ctx, "/api/v1/settings", patch, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Summary returns the list overview.
func (c *Client) Summary(ctx context.Context) (*domain.ListSummary, error) {
	var s domain.ListSummary
	if err := c.get(ctx, "/api/v1/summary", &s); err != nil {
		return nil, err
	}
	return &s, nil
}
