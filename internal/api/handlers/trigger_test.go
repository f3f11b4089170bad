package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/buying-list/internal/api/handlers"
	"github.com/donaldgifford/buying-list/internal/engine"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) RunNow(ctx context.Context) (*domain.BatchSummary, error) {
	args := m.Called(ctx)
	sum, _ := args.Get(0).(*domain.BatchSummary)
	return sum, args.Error(1)
}

func (m *mockScheduler) Status() engine.SchedulerStatus {
	return m.Called().Get(0).(engine.SchedulerStatus)
}

func TestRefreshHandler_Refresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		summary    *domain.BatchSummary
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "returns the batch summary",
			summary:    &domain.BatchSummary{Total: 3, Succeeded: 2, Failed: 1, Changed: 1},
			wantStatus: http.StatusOK,
			wantBody:   `"succeeded":2`,
		},
		{
			name:       "store failure",
			err:        errors.New("listing items: disk full"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `refresh failed`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &mockScheduler{}
			s.On("RunNow", mock.Anything).Return(tt.summary, tt.err).Once()

			_, api := humatest.New(t)
			handlers.RegisterRefreshRoutes(api, handlers.NewRefreshHandler(s))

			resp := api.Post("/api/v1/refresh")
			require.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
			s.AssertExpectations(t)
		})
	}
}

func TestRefreshHandler_Status(t *testing.T) {
	t.Parallel()

	next := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &mockScheduler{}
	want := engine.SchedulerStatus{
		Running:  true,
		Interval: "1h0m0s",
		NextRun:  &next,
	}
	s.On("Status").Return(want)

	_, api := humatest.New(t)
	handlers.RegisterRefreshRoutes(api, handlers.NewRefreshHandler(s))

	resp := api.Get("/api/v1/scheduler")
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeJSON[engine.SchedulerStatus](t, resp)
	assert.Equal(t, want.Running, got.Running)
	assert.Equal(t, want.Interval, got.Interval)
	require.NotNil(t, got.NextRun)
	assert.True(t, next.Equal(*got.NextRun))
	assert.Nil(t, got.LastSummary)
}
