package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/bargauge"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ExtractionStages returns a timeseries panel showing which stage found
// each price: a user selector, a common selector, or the document scan.
func ExtractionStages() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Extractions by Stage").
		Description("Successful extractions per second by the stage that found the price").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(rate(blt_extractions_total{job=%q}[5m])) by (stage)`, Job),
			"{{stage}}", "A",
		)).
		FillOpacity(30).
		LineWidth(1).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(Steps("green")).
		ColorScheme(ColorBy(Palette)).
		DrawStyle(common.GraphDrawStyleLine)
}

// ExtractionFailures returns a timeseries panel showing the failed update
// rate by reason.
func ExtractionFailures() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Extraction Failures").
		Description("Failed price updates per second by reason").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`blt:extraction_failures:rate5m`, "{{reason}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(Steps("green", At(0.01, "yellow"), At(0.1, "red"))).
		ColorScheme(ColorBy(ByThreshold)).
		DrawStyle(common.GraphDrawStyleLine)
}

// ConfidenceDistribution returns a bar gauge panel showing how confident
// the document scan was in the prices it picked.
func ConfidenceDistribution() *bargauge.PanelBuilder {
	return bargauge.NewPanelBuilder().
		Title("Document Scan Confidence").
		Description("Distribution of document scan confidence (0-100)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(increase(blt_extraction_confidence_bucket{job=%q}[1h])) by (le)`, Job),
			"{{le}}", "A",
		)).
		Orientation(common.VizOrientationHorizontal).
		Min(0).
		Thresholds(Steps("green")).
		ColorScheme(ColorBy(Palette))
}
