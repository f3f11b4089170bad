package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/buying-list/internal/engine"
	"github.com/donaldgifford/buying-list/internal/store"
)

// StatusResponse is a generic status response body.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// apiError maps engine and store errors onto HTTP status codes. Anything
// unrecognized becomes a 500 prefixed with action.
func apiError(action string, err error) error {
	switch {
	case errors.Is(err, engine.ErrItemNotFound),
		errors.Is(err, engine.ErrSourceNotFound),
		errors.Is(err, engine.ErrAlertNotFound),
		errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, engine.ErrInvalidSource),
		errors.Is(err, engine.ErrInvalidAlert),
		errors.Is(err, engine.ErrInvalidPrice),
		errors.Is(err, engine.ErrInvalidInterval):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, store.ErrDefaultCategory),
		errors.Is(err, store.ErrCategoryInUse):
		return huma.Error409Conflict(err.Error())
	default:
		return huma.Error500InternalServerError(action + ": " + err.Error())
	}
}

// StatusOutput wraps a StatusResponse.
type StatusOutput struct {
	Body StatusResponse
}

func newStatusOutput(status string) *StatusOutput {
	return &StatusOutput{Body: StatusResponse{Status: status}}
}
