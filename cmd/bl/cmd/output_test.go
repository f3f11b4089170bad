package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "github.com/donaldgifford/buying-list/internal/api/client"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short", in: "lamp", max: 10, want: "lamp"},
		{name: "exact", in: "0123456789", max: 10, want: "0123456789"},
		{name: "long", in: "Noise cancelling headphones", max: 10, want: "Noise c..."},
		{name: "multibyte", in: "سماعات لاسلكية جديدة", max: 8, want: "سماعا..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, truncate(tt.in, tt.max))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	p := decimal.RequireFromString("1299")
	assert.Equal(t, "1299.00", formatPrice(&p))
	assert.Equal(t, "-", formatPrice(nil))
}

func TestPrintItemTable(t *testing.T) {
	t.Parallel()

	low := decimal.RequireFromString("899.5")
	high := decimal.RequireFromString("950")
	items := []domain.Item{
		{
			ID:         "i1",
			Name:       "Headphones",
			CategoryID: "electronics",
			Priority:   domain.PriorityHigh,
			Status:     domain.StatusNeeded,
			Sources: []domain.Source{
				{ID: "s1", CurrentPrice: &high, Active: true},
				{ID: "s2", CurrentPrice: &low, Active: true},
			},
		},
		{ID: "i2", Name: "Desk lamp", CategoryID: "home", Status: domain.StatusWishlist},
	}

	var buf bytes.Buffer
	require.NoError(t, printItemTable(&buf, items))

	out := buf.String()
	assert.Contains(t, out, "LOWEST")
	assert.Contains(t, out, "899.50")
	assert.Contains(t, out, "Desk lamp")
	assert.Contains(t, out, "-")
}

func TestPrintExtraction(t *testing.T) {
	t.Parallel()

	price := decimal.RequireFromString("45.5")
	var ok bytes.Buffer
	require.NoError(t, printExtraction(&ok, &domain.ExtractionResult{
		Success:      true,
		Price:        &price,
		UsedSelector: "common: .sale-price",
		Stage:        domain.StageCommon,
		Confidence:   80,
	}))
	assert.Contains(t, ok.String(), "45.50")
	assert.Contains(t, ok.String(), "common: .sale-price")

	var failed bytes.Buffer
	require.NoError(t, printExtraction(&failed, &domain.ExtractionResult{
		Error:       "no price found",
		MatchedText: "Out of stock...",
	}))
	assert.Contains(t, failed.String(), "failed")
	assert.Contains(t, failed.String(), "Out of stock...")
}

func TestFormatBatch(t *testing.T) {
	t.Parallel()

	got := formatBatch(&domain.BatchSummary{Total: 4, Succeeded: 3, Failed: 1, Changed: 2, Duration: 1500 * time.Millisecond})
	assert.Equal(t, "4 sources, 3 ok, 1 failed, 2 changed in 1.5s", got)
}

func TestPrintSchedulerStatus(t *testing.T) {
	t.Parallel()

	next := time.Date(2026, 6, 15, 15, 0, 0, 0, time.UTC)
	reset := time.Date(2026, 6, 16, 9, 0, 0, 0, time.UTC)
	status := &apiclient.SchedulerStatus{Running: true, Interval: "1h0m0s", NextRun: &next}

	tests := []struct {
		name    string
		quota   apiclient.Quota
		want    []string
		notWant []string
	}{
		{
			name:    "unlimited",
			quota:   apiclient.Quota{DailyUsed: 12, Remaining: -1},
			want:    []string{"Running:", "true", "1h0m0s", "12 (no daily limit)"},
			notWant: []string{"Fetch budget:"},
		},
		{
			name:  "budget spent",
			quota: apiclient.Quota{DailyLimit: 50, DailyUsed: 50, ResetAt: &reset, Exhausted: true},
			want:  []string{"50 of 50", "Fetch budget:", "refused until reset"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, printSchedulerStatus(&buf, status, &tt.quota))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, buf.String(), w)
			}
		})
	}
}
