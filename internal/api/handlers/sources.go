package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/donaldgifford/buying-list/internal/engine"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// SourcesHandler handles the sources of an item and their prices.
type SourcesHandler struct {
	engine *engine.Engine
}

// NewSourcesHandler creates a new SourcesHandler.
func NewSourcesHandler(eng *engine.Engine) *SourcesHandler {
	return &SourcesHandler{engine: eng}
}

// --- Input/Output types ---

// SourceIDInput identifies one source of an item.
type SourceIDInput struct {
	ID       string `path:"id"       doc:"Item ID"`
	SourceID string `path:"sourceId" doc:"Source ID"`
}

// SourceOutput wraps a single source.
type SourceOutput struct {
	Body domain.Source
}

// AddSourceInput is the request for attaching a source to an item.
type AddSourceInput struct {
	ID   string `path:"id" doc:"Item ID"`
	Body struct {
		Name      string   `json:"name" minLength:"1" example:"Amazon"`
		URL       string   `json:"url" minLength:"1" format:"uri" example:"https://www.amazon.sa/dp/B0TEST"`
		Selectors []string `json:"selectors" minItems:"1" doc:"CSS selectors tried in order"`
		Currency  string   `json:"currency,omitempty" doc:"Defaults to the settings currency"`
		Active    *bool    `json:"active,omitempty" doc:"Defaults to true"`
	}
}

// UpdateSourceInput is the request for changing a source. Omitted fields
// are kept.
type UpdateSourceInput struct {
	ID       string `path:"id"       doc:"Item ID"`
	SourceID string `path:"sourceId" doc:"Source ID"`
	Body     struct {
		Name      *string   `json:"name,omitempty" minLength:"1"`
		URL       *string   `json:"url,omitempty" format:"uri"`
		Selectors *[]string `json:"selectors,omitempty"`
		Currency  *string   `json:"currency,omitempty"`
		Active    *bool     `json:"active,omitempty"`
	}
}

// SetPriceInput is the request for entering a price by hand.
type SetPriceInput struct {
	ID       string `path:"id"       doc:"Item ID"`
	SourceID string `path:"sourceId" doc:"Source ID"`
	Body     struct {
		Price decimal.Decimal `json:"price" doc:"Price as a decimal string" example:"1299.00"`
	}
}

// ExtractionOutput wraps one extraction attempt.
type ExtractionOutput struct {
	Body domain.ExtractionResult
}

// --- Handlers ---

// Add attaches a new source to the item.
func (h *SourcesHandler) Add(ctx context.Context, input *AddSourceInput) (*SourceOutput, error) {
	b := input.Body
	src, err := h.engine.AddSource(ctx, input.ID, engine.SourceInput{
		Name:      b.Name,
		URL:       b.URL,
		Selectors: b.Selectors,
		Currency:  b.Currency,
		Active:    b.Active,
	})
	if err != nil {
		return nil, apiError("adding source", err)
	}
	return &SourceOutput{Body: *src}, nil
}

// Update changes a source's settings.
func (h *SourcesHandler) Update(ctx context.Context, input *UpdateSourceInput) (*SourceOutput, error) {
	b := input.Body
	src, err := h.engine.UpdateSource(ctx, input.ID, input.SourceID, engine.SourcePatch{
		Name:      b.Name,
		URL:       b.URL,
		Selectors: b.Selectors,
		Currency:  b.Currency,
		Active:    b.Active,
	})
	if err != nil {
		return nil, apiError("updating source", err)
	}
	return &SourceOutput{Body: *src}, nil
}

// Remove detaches a source together with its history and alerts.
func (h *SourcesHandler) Remove(ctx context.Context, input *SourceIDInput) (*struct{}, error) {
	if err := h.engine.RemoveSource(ctx, input.ID, input.SourceID); err != nil {
		return nil, apiError("removing source", err)
	}
	return nil, nil //nolint:nilnil // 204 has no body
}

// SetPrice records a manually entered price.
func (h *SourcesHandler) SetPrice(ctx context.Context, input *SetPriceInput) (*SourceOutput, error) {
	src, err := h.engine.SetManualPrice(ctx, input.ID, input.SourceID, input.Body.Price)
	if err != nil {
		return nil, apiError("setting price", err)
	}
	return &SourceOutput{Body: *src}, nil
}

// Refresh fetches the source page now and commits the extracted price. A
// failed extraction is still a 200; the result carries the reason.
func (h *SourcesHandler) Refresh(ctx context.Context, input *SourceIDInput) (*ExtractionOutput, error) {
	res, err := h.engine.UpdateSourcePrice(ctx, input.ID, input.SourceID)
	if err != nil {
		return nil, apiError("refreshing price", err)
	}
	return &ExtractionOutput{Body: *res}, nil
}

// RegisterSourceRoutes registers source endpoints with the Huma API.
func RegisterSourceRoutes(api huma.API, h *SourcesHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "add-source",
		Method:        http.MethodPost,
		Path:          "/api/v1/items/{id}/sources",
		Summary:       "Add a source",
		Description:   "Attaches a website to the item. The URL must be absolute http or https and at least one selector is required.",
		Tags:          []string{"sources"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.Add)

	huma.Register(api, huma.Operation{
		OperationID: "update-source",
		Method:      http.MethodPatch,
		Path:        "/api/v1/items/{id}/sources/{sourceId}",
		Summary:     "Update a source",
		Tags:        []string{"sources"},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.Update)

	huma.Register(api, huma.Operation{
		OperationID:   "remove-source",
		Method:        http.MethodDelete,
		Path:          "/api/v1/items/{id}/sources/{sourceId}",
		Summary:       "Remove a source",
		Description:   "Removes the source and drops its price history and alerts.",
		Tags:          []string{"sources"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.Remove)

	huma.Register(api, huma.Operation{
		OperationID: "set-source-price",
		Method:      http.MethodPut,
		Path:        "/api/v1/items/{id}/sources/{sourceId}/price",
		Summary:     "Set a price manually",
		Description: "Records a hand-entered price. Alerts are not evaluated for manual prices.",
		Tags:        []string{"prices"},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, h.SetPrice)

	huma.Register(api, huma.Operation{
		OperationID: "refresh-source-price",
		Method:      http.MethodPost,
		Path:        "/api/v1/items/{id}/sources/{sourceId}/refresh",
		Summary:     "Refresh a source price",
		Description: "Fetches the source page, extracts the price and commits it when it changed.",
		Tags:        []string{"prices"},
		Errors:      []int{http.StatusNotFound},
	}, h.Refresh)
}
