// Package panels provides Grafana dashboard panel builders for
// buying-list metrics.
package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/cog"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
)

// Job is the scrape job label of the server.
const Job = "buying-list"

// Grid sizes.
const (
	StatWidth  = 6
	StatHeight = 4

	TSWidth  = 12
	TSHeight = 8

	FullWidth = 24
)

// DSRef returns a datasource reference pointing at the ${datasource}
// template variable.
func DSRef() dashboard.DataSourceRef {
	return dashboard.DataSourceRef{
		Type: cog.ToPtr("prometheus"),
		Uid:  cog.ToPtr("${datasource}"),
	}
}

// PromQuery is a Prometheus target.
func PromQuery(expr, legendFormat, refID string) *prometheus.DataqueryBuilder {
	return prometheus.NewDataqueryBuilder().
		Expr(expr).
		LegendFormat(legendFormat).
		RefId(refID)
}

// Quantile returns a histogram_quantile expression over a 5m rate of the
// given histogram, scoped to Job.
func Quantile(q float64, histogram string) string {
	return fmt.Sprintf(`histogram_quantile(%.2f, sum(rate(%s_bucket{job=%q}[5m])) by (le))`, q, histogram, Job)
}

// Step is one threshold above the base color.
type Step struct {
	Value float64
	Color string
}

// At builds a Step.
func At(value float64, color string) Step {
	return Step{Value: value, Color: color}
}

// Steps returns absolute thresholds starting at base and switching color at
// each step, in order.
func Steps(base string, steps ...Step) cog.Builder[dashboard.ThresholdsConfig] {
	out := []dashboard.Threshold{{Color: base}}
	for _, st := range steps {
		out = append(out, dashboard.Threshold{Value: cog.ToPtr(st.Value), Color: st.Color})
	}
	return dashboard.NewThresholdsConfigBuilder().
		Mode(dashboard.ThresholdsModeAbsolute).
		Steps(out)
}

// Color modes used by the panels.
const (
	Palette     = dashboard.FieldColorModeIdPaletteClassic
	ByThreshold = dashboard.FieldColorModeIdThresholds
)

// ColorBy returns a field color scheme in the given mode.
func ColorBy(mode dashboard.FieldColorModeId) cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().Mode(mode)
}

// TableLegend is a bottom table legend with the given calculations.
func TableLegend(calcs ...string) *common.VizLegendOptionsBuilder {
	return common.NewVizLegendOptionsBuilder().
		DisplayMode(common.LegendDisplayModeTable).
		Placement(common.LegendPlacementBottom).
		Calcs(calcs)
}

// MultiTooltip shows every series, largest first.
func MultiTooltip() *common.VizTooltipOptionsBuilder {
	return common.NewVizTooltipOptionsBuilder().
		Mode(common.TooltipDisplayModeMulti).
		Sort(common.SortOrderDescending)
}
