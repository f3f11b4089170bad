package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/buying-list/internal/fetch"
)

// QuotaHandler reports the page fetch budget.
type QuotaHandler struct {
	rl *fetch.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler. rl may be nil when fetches
// are not limited.
func NewQuotaHandler(rl *fetch.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		DailyLimit int64      `json:"daily_limit" example:"2000"                 doc:"Configured daily fetch limit, 0 when unlimited"`
		DailyUsed  int64      `json:"daily_used"  example:"142"                  doc:"Pages fetched in the current 24-hour window"`
		Remaining  int64      `json:"remaining"   example:"1858"                 doc:"Fetches left in the window, -1 when unlimited"`
		ResetAt    *time.Time `json:"reset_at,omitempty" example:"2026-06-16T14:30:00Z" doc:"When the current 24-hour window expires"`
		Exhausted  bool       `json:"exhausted"   doc:"True when refreshes are refused until the window resets"`
		PerSecond  float64    `json:"per_second"  example:"2"                    doc:"Sustained fetch rate, 0 when fetches are not spaced"`
	}
}

// GetQuota returns the current fetch quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		resp.Body.Remaining = -1
		return resp, nil
	}

	reset := h.rl.ResetAt()
	resp.Body.DailyLimit = h.rl.MaxDaily()
	resp.Body.DailyUsed = h.rl.DailyCount()
	resp.Body.Remaining = h.rl.Remaining()
	resp.Body.ResetAt = &reset
	resp.Body.Exhausted = resp.Body.Remaining == 0
	resp.Body.PerSecond = h.rl.PerSecond()

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get fetch quota status",
		Description: "Returns the page fetches used in the current daily window, the fetches remaining, and when the window resets.",
		Tags:        []string{"system"},
	}, h.GetQuota)
}
