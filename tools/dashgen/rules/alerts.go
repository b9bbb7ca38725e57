package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// listing-manager operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "lm-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "lm-alerts",
					Rules: []Rule{
						{
							Alert: "LmDown",
							Expr:  `absent(up{job="listing-manager"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Listing Manager is down",
								"description": "The listing-manager job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "LmReadinessDown",
							Expr:  `lm_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Listing Manager readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes.",
							},
						},
						{
							Alert: "LmHighErrorRate",
							Expr:  `lm:http_errors:rate5m / lm:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on Listing Manager",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "LmTokenRefreshFailures",
							Expr:  `lm:token_refresh_failures:rate5m > 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "User token refreshes are failing",
								"description": "Silent token refresh exchanges have been failing for more than 5 minutes. Sellers may be forced to reconnect.",
							},
						},
						{
							Alert: "LmPublishFailures",
							Expr:  `lm:publish_failures:rate5m > 0.1`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Publish workflow failure rate is elevated",
								"description": "Publish steps are failing at more than 0.1/s for the last 5 minutes.",
							},
						},
						{
							Alert: "LmEbayQuotaHigh",
							Expr:  `lm_ebay_daily_usage > 4000`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "eBay API daily usage is above 80% of the quota",
								"description": "Daily eBay API usage has exceeded 4000 calls (limit is 5000).",
							},
						},
						{
							Alert: "LmEbayLimitReached",
							Expr:  `increase(lm_ebay_daily_limit_hits_total[5m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "eBay API daily limit has been reached",
								"description": "The eBay Browse API daily quota has been exhausted. Search is rejected until reset.",
							},
						},
					},
				},
			},
		},
	}
}
