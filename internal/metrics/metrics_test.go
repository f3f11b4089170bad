package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HTTPRequestsInFlight)
	assert.NotNil(t, HTTPPanicsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, FetchDuration)
	assert.NotNil(t, FetchResponsesTotal)
	assert.NotNil(t, FetchDailyUsage)
	assert.NotNil(t, FetchDailyLimitHits)
	assert.NotNil(t, ExtractionDuration)
	assert.NotNil(t, ExtractionsTotal)
	assert.NotNil(t, ExtractionFailuresTotal)
	assert.NotNil(t, ExtractionConfidence)
	assert.NotNil(t, PriceChangesTotal)
	assert.NotNil(t, UpdateAllDuration)
	assert.NotNil(t, UpdateAllSourcesTotal)
	assert.NotNil(t, SchedulerNextRunTimestamp)
	assert.NotNil(t, AlertsFiredTotal)
	assert.NotNil(t, NotificationFailuresTotal)
	assert.NotNil(t, NotificationDuration)
}

func TestMetricsNamespace(t *testing.T) {
	t.Parallel()

	// Lint the collectors for naming problems.
	problems, err := testutil.CollectAndLint(PriceChangesTotal)
	assert.NoError(t, err)
	assert.Empty(t, problems)
}
