package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/buying-list/internal/store"
	"github.com/donaldgifford/buying-list/pkg/advisor"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// Rescheduler changes the periodic refresh interval.
type Rescheduler interface {
	Reschedule(interval time.Duration) error
}

// SettingsHandler handles runtime settings and the list summary.
type SettingsHandler struct {
	store     store.Store
	scheduler Rescheduler
}

// NewSettingsHandler creates a new SettingsHandler. A nil scheduler leaves
// the refresh interval alone when settings change.
func NewSettingsHandler(s store.Store, sched Rescheduler) *SettingsHandler {
	return &SettingsHandler{store: s, scheduler: sched}
}

// SettingsOutput wraps the settings.
type SettingsOutput struct {
	Body domain.Settings
}

// UpdateSettingsInput is the request for changing settings. Omitted fields
// are kept.
type UpdateSettingsInput struct {
	Body struct {
		DefaultCurrency      *string       `json:"default_currency,omitempty" minLength:"1" example:"SAR"`
		UpdateIntervalMs     *int64        `json:"update_interval_ms,omitempty" minimum:"60000" doc:"Refresh interval in milliseconds"`
		NotificationsEnabled *bool         `json:"notifications_enabled,omitempty"`
		Theme                *domain.Theme `json:"theme,omitempty" enum:"light,dark,auto"`
	}
}

// SummaryOutput is the response for the list summary.
type SummaryOutput struct {
	Body domain.ListSummary
}

// Get returns the current settings.
func (h *SettingsHandler) Get(ctx context.Context, _ *struct{}) (*SettingsOutput, error) {
	s, err := h.store.GetSettings(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("getting settings: " + err.Error())
	}
	return &SettingsOutput{Body: *s}, nil
}

// Update changes settings and applies a new refresh interval to the
// scheduler.
func (h *SettingsHandler) Update(ctx context.Context, input *UpdateSettingsInput) (*SettingsOutput, error) {
	s, err := h.store.GetSettings(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("getting settings: " + err.Error())
	}
	before := s.UpdateInterval()

	b := input.Body
	setIf(&s.DefaultCurrency, b.DefaultCurrency)
	setIf(&s.UpdateIntervalMs, b.UpdateIntervalMs)
	setIf(&s.NotificationsEnabled, b.NotificationsEnabled)
	setIf(&s.Theme, b.Theme)

	if err := h.store.UpdateSettings(ctx, s); err != nil {
		return nil, huma.Error500InternalServerError("updating settings: " + err.Error())
	}

	if h.scheduler != nil && s.UpdateInterval() != before {
		if err := h.scheduler.Reschedule(s.UpdateInterval()); err != nil {
			return nil, apiError("rescheduling updates", err)
		}
	}
	return &SettingsOutput{Body: *s}, nil
}

// Summary returns the overview counts of the whole list.
func (h *SettingsHandler) Summary(ctx context.Context, _ *struct{}) (*SummaryOutput, error) {
	items, _, err := h.store.ListItems(ctx, &store.ItemQuery{})
	if err != nil {
		return nil, huma.Error500InternalServerError("listing items: " + err.Error())
	}
	cats, err := h.store.ListCategories(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing categories: " + err.Error())
	}
	return &SummaryOutput{Body: advisor.Summarize(items, len(cats))}, nil
}

// RegisterSettingsRoutes registers settings and summary endpoints with the
// Huma API.
func RegisterSettingsRoutes(api huma.API, h *SettingsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-settings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings",
		Summary:     "Get settings",
		Tags:        []string{"settings"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "update-settings",
		Method:      http.MethodPatch,
		Path:        "/api/v1/settings",
		Summary:     "Update settings",
		Description: "Changes settings. A new update interval reschedules the periodic refresh.",
		Tags:        []string{"settings"},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID: "get-summary",
		Method:      http.MethodGet,
		Path:        "/api/v1/summary",
		Summary:     "Get list summary",
		Description: "Returns item counts by status, the estimated list value and source and alert counts.",
		Tags:        []string{"settings"},
	}, h.Summary)
}
