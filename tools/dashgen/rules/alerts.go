package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// buying-list operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "blt-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "blt-alerts",
					Rules: []Rule{
						{
							Alert: "BltDown",
							Expr:  `absent(up{job="buying-list"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Buying List is down",
								"description": "The buying-list job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "BltReadinessDown",
							Expr:  `blt_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Buying List readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes.",
							},
						},
						{
							Alert: "BltHighErrorRate",
							Expr:  `blt:http_errors:rate5m / blt:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on Buying List",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "BltFetchErrors",
							Expr:  `sum(blt:fetch_responses:rate5m{class=~"error|5xx"}) / sum(blt:fetch_responses:rate5m) > 0.5`,
							For:   "15m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Most source page fetches are failing",
								"description": "More than half of page fetches ended in a transport error or a 5xx for 15 minutes.",
							},
						},
						{
							Alert: "BltExtractionFailures",
							Expr:  `sum(blt:extraction_failures:rate5m{reason="no_price"}) > 0.1`,
							For:   "15m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Prices are not being found on fetched pages",
								"description": "Pages are fetched but no price is extracted at more than 0.1/s. Shop markup may have changed.",
							},
						},
						{
							Alert: "BltFetchBudgetExhausted",
							Expr:  `increase(blt_fetch_daily_limit_hits_total[5m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Daily fetch budget has been spent",
								"description": "Source updates are refused until the daily fetch budget resets.",
							},
						},
						{
							Alert: "BltUpdatesStalled",
							Expr:  `time() - blt_scheduler_next_run_timestamp > 3600`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Scheduled updates have stopped",
								"description": "The scheduled update-all run is more than an hour overdue.",
							},
						},
						{
							Alert: "BltNotificationFailures",
							Expr:  `increase(blt_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more alert notifications have failed to send.",
							},
						},
					},
				},
			},
		},
	}
}
