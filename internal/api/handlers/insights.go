package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/buying-list/internal/engine"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// InsightsHandler serves the read-side price analysis of an item.
type InsightsHandler struct {
	engine *engine.Engine
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(eng *engine.Engine) *InsightsHandler {
	return &InsightsHandler{engine: eng}
}

// ComparisonOutput is the response for the comparison endpoint.
type ComparisonOutput struct {
	Body struct {
		Comparison *domain.ComparisonSnapshot `json:"comparison" doc:"Null until a source has a price"`
	}
}

// HistoryInput is the input for the price history endpoint.
type HistoryInput struct {
	ID     string `path:"id"      doc:"Item ID"`
	Source string `query:"source" doc:"Restrict to one source ID"`
	Days   int    `query:"days"   doc:"Window length in days, default from configuration" minimum:"0" maximum:"3650"`
}

// HistoryOutput is the response for the price history endpoint.
type HistoryOutput struct {
	Body struct {
		Points []domain.PricePoint `json:"points"`
	}
}

// StatisticsOutput is the response for the statistics endpoint.
type StatisticsOutput struct {
	Body struct {
		Statistics *domain.Statistics `json:"statistics" doc:"Null when the window holds no points"`
	}
}

// RecommendationOutput is the response for the recommendation endpoint.
type RecommendationOutput struct {
	Body struct {
		Recommendation *domain.Recommendation `json:"recommendation" doc:"Null until a source has a price"`
	}
}

// Comparison ranks the item's priced sources.
func (h *InsightsHandler) Comparison(ctx context.Context, input *ItemIDInput) (*ComparisonOutput, error) {
	cmp, err := h.engine.Comparison(ctx, input.ID)
	if err != nil {
		return nil, apiError("comparing prices", err)
	}
	resp := &ComparisonOutput{}
	resp.Body.Comparison = cmp
	return resp, nil
}

// History returns the item's price points in the window.
func (h *InsightsHandler) History(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	points, err := h.engine.History(ctx, input.ID, input.Source, input.Days)
	if err != nil {
		return nil, apiError("reading history", err)
	}
	if points == nil {
		points = []domain.PricePoint{}
	}
	resp := &HistoryOutput{}
	resp.Body.Points = points
	return resp, nil
}

// Statistics summarizes one source's recent prices.
func (h *InsightsHandler) Statistics(ctx context.Context, input *SourceIDInput) (*StatisticsOutput, error) {
	stats, err := h.engine.Statistics(ctx, input.ID, input.SourceID)
	if err != nil {
		return nil, apiError("computing statistics", err)
	}
	resp := &StatisticsOutput{}
	resp.Body.Statistics = stats
	return resp, nil
}

// Recommendation advises whether to buy now.
func (h *InsightsHandler) Recommendation(ctx context.Context, input *ItemIDInput) (*RecommendationOutput, error) {
	rec, err := h.engine.Recommendation(ctx, input.ID)
	if err != nil {
		return nil, apiError("building recommendation", err)
	}
	resp := &RecommendationOutput{}
	resp.Body.Recommendation = rec
	return resp, nil
}

// RegisterInsightRoutes registers price insight endpoints with the Huma API.
func RegisterInsightRoutes(api huma.API, h *InsightsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-comparison",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}/comparison",
		Summary:     "Compare source prices",
		Description: "Ranks the item's active priced sources from cheapest to most expensive.",
		Tags:        []string{"insights"},
		Errors:      []int{http.StatusNotFound},
	}, h.Comparison)

	huma.Register(api, huma.Operation{
		OperationID: "get-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}/history",
		Summary:     "Get price history",
		Tags:        []string{"insights"},
		Errors:      []int{http.StatusNotFound},
	}, h.History)

	huma.Register(api, huma.Operation{
		OperationID: "get-statistics",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}/sources/{sourceId}/statistics",
		Summary:     "Get price statistics",
		Description: "Returns the current, previous, average, lowest and highest price with the trend.",
		Tags:        []string{"insights"},
		Errors:      []int{http.StatusNotFound},
	}, h.Statistics)

	huma.Register(api, huma.Operation{
		OperationID: "get-recommendation",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}/recommendation",
		Summary:     "Get a buy recommendation",
		Tags:        []string{"insights"},
		Errors:      []int{http.StatusNotFound},
	}, h.Recommendation)
}
