package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/buying-list/internal/fetch"
	"github.com/donaldgifford/buying-list/pkg/extract"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// ExtractHandler runs the extraction pipeline without touching any item.
type ExtractHandler struct {
	pipeline *extract.Pipeline
	fetcher  fetch.Fetcher
}

// NewExtractHandler creates a new ExtractHandler. fetcher may be nil, in
// which case only inline markup is accepted.
func NewExtractHandler(p *extract.Pipeline, f fetch.Fetcher) *ExtractHandler {
	return &ExtractHandler{pipeline: p, fetcher: f}
}

// ExtractInput is the request body for the dry-run extract endpoint.
type ExtractInput struct {
	Body struct {
		Markup    string   `json:"markup,omitempty" doc:"Page markup to extract from"`
		URL       string   `json:"url,omitempty" format:"uri" doc:"Page to fetch when no markup is given"`
		Selectors []string `json:"selectors,omitempty" doc:"Source selectors tried before the common ones"`
	}
}

// Extract resolves a price from markup or a fetched page. Extraction
// failures come back in the result with a 200.
func (h *ExtractHandler) Extract(ctx context.Context, input *ExtractInput) (*ExtractionOutput, error) {
	markup := input.Body.Markup
	if markup == "" {
		if input.Body.URL == "" {
			return nil, huma.Error422UnprocessableEntity("markup or url is required")
		}
		if h.fetcher == nil {
			return nil, huma.Error422UnprocessableEntity("fetching is not available, send markup instead")
		}
		resp, err := h.fetcher.Fetch(ctx, input.Body.URL, fetch.BrowserHeaders(nil))
		if err != nil {
			return nil, huma.Error502BadGateway("fetching page: " + err.Error())
		}
		if resp.Status != http.StatusOK {
			return &ExtractionOutput{Body: domain.ExtractionResult{
				Error: fmt.Sprintf("HTTP %d: %s", resp.Status, http.StatusText(resp.Status)),
			}}, nil
		}
		markup = resp.Body
	}

	res := h.pipeline.Extract(markup, input.Body.Selectors)
	return &ExtractionOutput{Body: *res}, nil
}

// RegisterExtractRoutes registers the dry-run extract endpoint with the
// Huma API.
func RegisterExtractRoutes(api huma.API, h *ExtractHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "extract-price",
		Method:      http.MethodPost,
		Path:        "/api/v1/extract",
		Summary:     "Extract a price",
		Description: "Runs the selector, common selector and document scan stages over the given " +
			"markup or page and returns the result without storing anything.",
		Tags:   []string{"extract"},
		Errors: []int{http.StatusUnprocessableEntity, http.StatusBadGateway},
	}, h.Extract)
}
