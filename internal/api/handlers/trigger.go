package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/buying-list/internal/engine"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// Scheduler runs refreshes on demand and reports its state.
type Scheduler interface {
	RunNow(ctx context.Context) (*domain.BatchSummary, error)
	Status() engine.SchedulerStatus
}

// RefreshHandler handles manual refresh-all requests and scheduler status.
type RefreshHandler struct {
	scheduler Scheduler
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(s Scheduler) *RefreshHandler {
	return &RefreshHandler{scheduler: s}
}

// RefreshOutput is the response body for the refresh-all endpoint.
type RefreshOutput struct {
	Body domain.BatchSummary
}

// SchedulerStatusOutput is the response body for the scheduler endpoint.
type SchedulerStatusOutput struct {
	Body engine.SchedulerStatus
}

// Refresh updates every active source of every item now.
func (h *RefreshHandler) Refresh(ctx context.Context, _ *struct{}) (*RefreshOutput, error) {
	sum, err := h.scheduler.RunNow(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("refresh failed: " + err.Error())
	}
	return &RefreshOutput{Body: *sum}, nil
}

// Status reports the scheduler state and the last run.
func (h *RefreshHandler) Status(_ context.Context, _ *struct{}) (*SchedulerStatusOutput, error) {
	return &SchedulerStatusOutput{Body: h.scheduler.Status()}, nil
}

// RegisterRefreshRoutes registers refresh and scheduler endpoints with the
// Huma API.
func RegisterRefreshRoutes(api huma.API, h *RefreshHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "refresh-all",
		Method:      http.MethodPost,
		Path:        "/api/v1/refresh",
		Summary:     "Refresh all prices",
		Description: "Fetches and extracts the price of every active source of every item, " +
			"commits changes and fires alerts.",
		Tags:   []string{"prices"},
		Errors: []int{http.StatusInternalServerError},
	}, h.Refresh)

	huma.Register(api, huma.Operation{
		OperationID: "get-scheduler-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/scheduler",
		Summary:     "Get scheduler status",
		Tags:        []string{"prices"},
	}, h.Status)
}
