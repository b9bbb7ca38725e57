package main

import "errors"

// KnownMetrics is the set of metric names exported by listing-manager
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"lm_http_request_duration_seconds": true,
	"lm_http_requests_total":           true,

	// Health metrics.
	"lm_healthz_up": true,
	"lm_readyz_up":  true,

	// OAuth metrics.
	"lm_token_refreshes_total": true,
	"lm_oauth_connects_total":  true,

	// Publish metrics.
	"lm_publish_steps_total":      true,
	"lm_publish_duration_seconds": true,

	// eBay API metrics.
	"lm_ebay_api_calls_total":        true,
	"lm_ebay_daily_usage":            true,
	"lm_ebay_daily_limit_hits_total": true,
	"lm_ebay_quota_remaining":        true,
	"lm_ebay_quota_limit":            true,

	// Recording rules.
	"lm:http_requests:rate5m":          true,
	"lm:http_errors:rate5m":            true,
	"lm:ebay_api_calls:rate5m":         true,
	"lm:token_refresh_failures:rate5m": true,
	"lm:publish_failures:rate5m":       true,

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
