package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// PublishSteps returns a timeseries panel showing publish workflow steps
// by step and outcome.
func PublishSteps() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Publish Steps").
		Description("Publish workflow steps per second by step and outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(lm_publish_steps_total{job="listing-manager"}[5m])) by (step, outcome)`,
			"{{step}}/{{outcome}}", "A",
		)).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PublishLatency returns a timeseries panel showing p50 and p95 durations
// of full publish invocations.
func PublishLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Publish Duration").
		Description("Full publish invocation duration percentiles").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`histogram_quantile(0.50, sum(rate(lm_publish_duration_seconds_bucket{job="listing-manager"}[5m])) by (le))`,
			"p50",
			"A",
		)).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(lm_publish_duration_seconds_bucket{job="listing-manager"}[5m])) by (le))`,
			"p95",
			"B",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
