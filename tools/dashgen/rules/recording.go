package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "lm-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "lm-recording",
					Rules: []Rule{
						{
							Record: "lm:http_requests:rate5m",
							Expr:   `sum(rate(lm_http_requests_total[5m]))`,
						},
						{
							Record: "lm:http_errors:rate5m",
							Expr:   `sum(rate(lm_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "lm:ebay_api_calls:rate5m",
							Expr:   `rate(lm_ebay_api_calls_total[5m])`,
						},
						{
							Record: "lm:token_refresh_failures:rate5m",
							Expr:   `sum(rate(lm_token_refreshes_total{outcome="error"}[5m]))`,
						},
						{
							Record: "lm:publish_failures:rate5m",
							Expr:   `sum(rate(lm_publish_steps_total{outcome="error"}[5m]))`,
						},
					},
				},
			},
		},
	}
}
