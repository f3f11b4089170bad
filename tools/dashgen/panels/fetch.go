package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// FetchResponses returns a timeseries panel showing page fetches per
// second by status class.
func FetchResponses() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Fetches by Status").
		Description("Source page fetches per second by status class").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`blt:fetch_responses:rate5m`, "{{class}}", "A")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(Steps("green")).
		ColorScheme(ColorBy(Palette)).
		DrawStyle(common.GraphDrawStyleLine)
}

// FetchLatency returns a timeseries panel showing p50 and p95 page fetch
// latencies.
func FetchLatency() *timeseries.PanelBuilder {
	const h = "blt_fetch_duration_seconds"
	return timeseries.NewPanelBuilder().
		Title("Fetch Duration").
		Description("Source page fetch duration percentiles").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(Quantile(0.50, h), "p50", "A")).
		WithTarget(PromQuery(Quantile(0.95, h), "p95", "B")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(Steps("green")).
		ColorScheme(ColorBy(Palette)).
		DrawStyle(common.GraphDrawStyleLine)
}

// DailyUsage returns a stat panel showing fetches counted against the
// daily budget.
func DailyUsage() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Daily Fetches").
		Description("Fetches counted against the daily budget since the last reset").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(4).
		WithTarget(PromQuery(fmt.Sprintf(`blt_fetch_daily_usage{job=%q}`, Job), "", "A")).
		Thresholds(Steps("green")).
		ColorScheme(ColorBy(ByThreshold)).
		GraphMode(common.BigValueGraphModeArea)
}

// LimitHits returns a stat panel showing the number of daily budget hits
// in the past 24 hours.
func LimitHits() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Budget Hits (24h)").
		Description("Fetches refused because the daily budget was spent").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(4).
		WithTarget(PromQuery(fmt.Sprintf(`increase(blt_fetch_daily_limit_hits_total{job=%q}[24h])`, Job), "", "A")).
		Thresholds(Steps("green", At(1, "yellow"), At(10, "red"))).
		ColorScheme(ColorBy(ByThreshold)).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
