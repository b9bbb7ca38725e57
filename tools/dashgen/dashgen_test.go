package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/listing-manager/tools/dashgen/dashboards"
	"github.com/donaldgifford/listing-manager/tools/dashgen/rules"
	"github.com/donaldgifford/listing-manager/tools/dashgen/validate"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_EmptyOutputDir(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "", DashboardEnabled: true}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_NothingEnabled(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "/tmp", DashboardEnabled: false, RulesEnabled: false}
	assert.Error(t, cfg.Validate())
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	builder := dashboards.BuildOverview()
	dash, err := builder.Build()
	require.NoError(t, err)

	// Verify dashboard metadata.
	require.NotNil(t, dash.Uid)
	assert.Equal(t, "lm-overview", *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "Listing Manager Overview", *dash.Title)

	// Verify template variable.
	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	// Verify we have 5 rows.
	assert.Len(t, dash.Panels, 5)

	// Count total inner panels.
	totalPanels := 0
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			totalPanels += len(p.RowPanel.Panels)
		}
	}
	assert.Equal(t, 15, totalPanels)

	// Validate PromQL and metrics.
	result := validate.Dashboard(dash, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings, "unexpected warnings: %v", result.Warnings)
}

func TestBuildOverviewDashboard_RejectsUnknownMetric(t *testing.T) {
	t.Parallel()

	dash, err := dashboards.BuildOverview().Build()
	require.NoError(t, err)

	// Drop a known metric and expect validation to flag its panels.
	known := make(map[string]bool, len(KnownMetrics))
	for k, v := range KnownMetrics {
		known[k] = v
	}
	delete(known, "lm_healthz_up")

	result := validate.Dashboard(dash, known)
	assert.False(t, result.Ok())
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "lm-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "lm-recording", group.Name)
	require.Len(t, group.Rules, 5)

	expectedRecords := []string{
		"lm:http_requests:rate5m",
		"lm:http_errors:rate5m",
		"lm:ebay_api_calls:rate5m",
		"lm:token_refresh_failures:rate5m",
		"lm:publish_failures:rate5m",
	}
	for i, rule := range group.Rules {
		assert.Equal(t, expectedRecords[i], rule.Record)
		assert.NotEmpty(t, rule.Expr)
	}

	// Verify YAML marshaling works.
	data, err := yaml.Marshal(cr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: monitoring.coreos.com/v1")
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "lm-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "lm-alerts", group.Name)
	require.Len(t, group.Rules, 7)

	expectedAlerts := []string{
		"LmDown",
		"LmReadinessDown",
		"LmHighErrorRate",
		"LmTokenRefreshFailures",
		"LmPublishFailures",
		"LmEbayQuotaHigh",
		"LmEbayLimitReached",
	}
	for i, rule := range group.Rules {
		assert.Equal(t, expectedAlerts[i], rule.Alert)
		assert.NotEmpty(t, rule.Expr)
		assert.NotEmpty(t, rule.Labels["severity"], "alert %s missing severity", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)
	}
}

func TestRun_WritesArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}

	require.NoError(t, run(cfg, false))

	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{
			name:     "lm-overview.json",
			path:     filepath.Join(dir, "grafana", "data", "lm-overview.json"),
			contains: `"lm-overview"`,
		},
		{
			name:     "lm-recording-rules.yaml",
			path:     filepath.Join(dir, "prometheus", "lm-recording-rules.yaml"),
			contains: "lm:http_requests:rate5m",
		},
		{
			name:     "lm-alerts.yaml",
			path:     filepath.Join(dir, "prometheus", "lm-alerts.yaml"),
			contains: "LmEbayLimitReached",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := os.ReadFile(tt.path)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.contains)
		})
	}
}

func TestRun_ValidateOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}

	require.NoError(t, run(cfg, true))

	// Validate mode must not write anything.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
