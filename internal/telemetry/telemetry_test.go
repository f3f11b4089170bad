package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/donaldgifford/buying-list/internal/config"
)

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(context.Background(), &config.TracingConfig{}, "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

// Not parallel: installs global providers.
func TestSetup_Enabled(t *testing.T) {
	cfg := &config.TracingConfig{
		Enabled:        true,
		Endpoint:       "127.0.0.1:4317",
		Insecure:       true,
		ServiceName:    "buying-list-test",
		SampleRatio:    1,
		MetricsEnabled: true,
		MetricInterval: time.Hour,
	}

	shutdown, err := Setup(context.Background(), cfg, "test")
	require.NoError(t, err)

	_, isSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, isSDK)
	_, isSDKMeter := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	assert.True(t, isSDKMeter)

	// Nothing listens on the endpoint; only make sure shutdown returns.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}
