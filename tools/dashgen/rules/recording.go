package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "blt-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "blt-recording",
					Rules: []Rule{
						{
							Record: "blt:http_requests:rate5m",
							Expr:   `sum(rate(blt_http_requests_total[5m]))`,
						},
						{
							Record: "blt:http_errors:rate5m",
							Expr:   `sum(rate(blt_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "blt:fetch_responses:rate5m",
							Expr:   `sum(rate(blt_fetch_responses_total[5m])) by (class)`,
						},
						{
							Record: "blt:extraction_failures:rate5m",
							Expr:   `sum(rate(blt_extraction_failures_total[5m])) by (reason)`,
						},
						{
							Record: "blt:update_all_sources:rate5m",
							Expr:   `sum(rate(blt_update_all_sources_total[5m])) by (result)`,
						},
						{
							Record: "blt:notification_duration:p95_5m",
							Expr:   `histogram_quantile(0.95, sum(rate(blt_notification_duration_seconds_bucket[5m])) by (le))`,
						},
					},
				},
			},
		},
	}
}
