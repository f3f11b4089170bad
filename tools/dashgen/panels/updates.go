package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// SourceResults returns a timeseries panel showing sources processed by
// update-all runs, by result.
func SourceResults() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Sources / min").
		Description("Sources processed by update-all runs per minute, by result").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`blt:update_all_sources:rate5m * 60`, "{{result}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Thresholds(Steps("green")).
		ColorScheme(ColorBy(Palette)).
		DrawStyle(common.GraphDrawStyleLine)
}

// PriceChanges returns a timeseries panel showing committed price changes
// per hour.
func PriceChanges() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Price Changes / h").
		Description("Prices that differed from the stored price and were committed").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(increase(blt_price_changes_total{job=%q}[1h]))`, Job),
			"changes", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(Steps("green")).
		ColorScheme(ColorBy(Palette)).
		DrawStyle(common.GraphDrawStyleBars)
}

// RunDuration returns a timeseries panel showing the p95 update-all run
// duration.
func RunDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Run Duration (p95)").
		Description("95th percentile update-all run duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(Quantile(0.95, "blt_update_all_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(Steps("green")).
		ColorScheme(ColorBy(Palette)).
		DrawStyle(common.GraphDrawStyleLine)
}
