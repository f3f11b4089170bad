package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/donaldgifford/buying-list/internal/engine"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// AlertsHandler handles price alerts.
type AlertsHandler struct {
	engine *engine.Engine
}

// NewAlertsHandler creates a new AlertsHandler.
func NewAlertsHandler(eng *engine.Engine) *AlertsHandler {
	return &AlertsHandler{engine: eng}
}

// AddAlertInput is the request for creating an alert.
type AddAlertInput struct {
	ID   string `path:"id" doc:"Item ID"`
	Body struct {
		SourceID    string                `json:"source_id" minLength:"1"`
		TargetPrice decimal.Decimal       `json:"target_price" doc:"Target as a decimal string" example:"950.00"`
		Condition   domain.AlertCondition `json:"condition" enum:"below,above,equal"`
	}
}

// AlertIDInput identifies one alert of an item.
type AlertIDInput struct {
	ID      string `path:"id"      doc:"Item ID"`
	AlertID string `path:"alertId" doc:"Alert ID"`
}

// AlertOutput wraps a single alert.
type AlertOutput struct {
	Body domain.Alert
}

// Add creates an active alert on one of the item's sources.
func (h *AlertsHandler) Add(ctx context.Context, input *AddAlertInput) (*AlertOutput, error) {
	a, err := h.engine.AddAlert(ctx, input.ID, engine.AlertInput{
		SourceID:    input.Body.SourceID,
		TargetPrice: input.Body.TargetPrice,
		Condition:   input.Body.Condition,
	})
	if err != nil {
		return nil, apiError("adding alert", err)
	}
	return &AlertOutput{Body: *a}, nil
}

// Remove deletes an alert.
func (h *AlertsHandler) Remove(ctx context.Context, input *AlertIDInput) (*struct{}, error) {
	if err := h.engine.RemoveAlert(ctx, input.ID, input.AlertID); err != nil {
		return nil, apiError("removing alert", err)
	}
	return nil, nil //nolint:nilnil // 204 has no body
}

// Toggle flips whether an alert is active.
func (h *AlertsHandler) Toggle(ctx context.Context, input *AlertIDInput) (*AlertOutput, error) {
	a, err := h.engine.ToggleAlert(ctx, input.ID, input.AlertID)
	if err != nil {
		return nil, apiError("toggling alert", err)
	}
	return &AlertOutput{Body: *a}, nil
}

// RegisterAlertRoutes registers alert endpoints with the Huma API.
func RegisterAlertRoutes(api huma.API, h *AlertsHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "add-alert",
		Method:        http.MethodPost,
		Path:          "/api/v1/items/{id}/alerts",
		Summary:       "Add a price alert",
		Description:   "Creates an alert that fires once when the source price meets the condition.",
		Tags:          []string{"alerts"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.Add)

	huma.Register(api, huma.Operation{
		OperationID:   "remove-alert",
		Method:        http.MethodDelete,
		Path:          "/api/v1/items/{id}/alerts/{alertId}",
		Summary:       "Remove a price alert",
		Tags:          []string{"alerts"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.Remove)

	huma.Register(api, huma.Operation{
		OperationID: "toggle-alert",
		Method:      http.MethodPost,
		Path:        "/api/v1/items/{id}/alerts/{alertId}/toggle",
		Summary:     "Toggle a price alert",
		Tags:        []string{"alerts"},
		Errors:      []int{http.StatusNotFound},
	}, h.Toggle)
}
