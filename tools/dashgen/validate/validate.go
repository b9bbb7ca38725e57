// Package validate checks generated dashboards against the set of metrics
// the service actually exports, so a renamed metric fails the build instead
// of producing a silently empty panel.
package validate

import (
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	promsdk "github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/prometheus/prometheus/promql/parser"
)

// Result collects validation findings for one dashboard.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation found no errors.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

// Dashboard parses every panel target's PromQL expression and verifies
// that each referenced metric is in knownMetrics.
func Dashboard(dash dashboard.Dashboard, knownMetrics map[string]bool) Result {
	var result Result

	for _, p := range dash.Panels {
		switch {
		case p.Panel != nil:
			checkPanel(*p.Panel, knownMetrics, &result)
		case p.RowPanel != nil:
			for _, inner := range p.RowPanel.Panels {
				checkPanel(inner, knownMetrics, &result)
			}
		}
	}

	return result
}

func checkPanel(p dashboard.Panel, knownMetrics map[string]bool, result *Result) {
	title := "untitled"
	if p.Title != nil {
		title = *p.Title
	}

	for _, target := range p.Targets {
		expr := exprOf(target)
		if expr == "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("panel %q: target has no expression", title))
			continue
		}

		parsed, err := parser.ParseExpr(expr)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("panel %q: invalid PromQL %q: %v", title, expr, err))
			continue
		}

		parser.Inspect(parsed, func(node parser.Node, _ []parser.Node) error {
			vs, ok := node.(*parser.VectorSelector)
			if !ok || vs.Name == "" {
				return nil
			}
			if !knownMetrics[baseMetricName(vs.Name)] {
				result.Errors = append(result.Errors,
					fmt.Sprintf("panel %q: unknown metric %q", title, vs.Name))
			}
			return nil
		})
	}
}

// exprOf extracts the PromQL expression from a built panel target.
func exprOf(target any) string {
	switch q := target.(type) {
	case promsdk.Dataquery:
		return q.Expr
	case *promsdk.Dataquery:
		return q.Expr
	default:
		return ""
	}
}

// baseMetricName strips histogram series suffixes so that
// lm_http_request_duration_seconds_bucket matches the declared
// histogram name.
func baseMetricName(name string) string {
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if base, ok := strings.CutSuffix(name, suffix); ok {
			return base
		}
	}
	return name
}
