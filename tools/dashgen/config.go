package main

import "errors"

// KnownMetrics is the set of metric names exported by buying-list plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"blt_http_request_duration_seconds": true,
	"blt_http_requests_total":           true,
	"blt_http_requests_in_flight":       true,
	"blt_http_panics_total":             true,

	// Health metrics.
	"blt_healthz_up": true,
	"blt_readyz_up":  true,

	// Fetch metrics.
	"blt_fetch_duration_seconds":       true,
	"blt_fetch_responses_total":        true,
	"blt_fetch_daily_usage":            true,
	"blt_fetch_daily_limit_hits_total": true,

	// Extraction metrics.
	"blt_extraction_duration_seconds": true,
	"blt_extractions_total":           true,
	"blt_extraction_failures_total":   true,
	"blt_extraction_confidence":       true,
	"blt_price_changes_total":         true,

	// Update metrics.
	"blt_update_all_duration_seconds":  true,
	"blt_update_all_sources_total":     true,
	"blt_scheduler_next_run_timestamp": true,

	// Alert metrics.
	"blt_alerts_fired_total":            true,
	"blt_notification_failures_total":   true,
	"blt_notification_duration_seconds": true,

	// Recording rules.
	"blt:http_requests:rate5m":         true,
	"blt:http_errors:rate5m":           true,
	"blt:fetch_responses:rate5m":       true,
	"blt:extraction_failures:rate5m":   true,
	"blt:update_all_sources:rate5m":    true,
	"blt:notification_duration:p95_5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
