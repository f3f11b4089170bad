package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// HealthzStat returns a stat panel showing the health check status.
func HealthzStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Healthz").
		Description("Health check status (1 = ok, 0 = failing)").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`blt_healthz_up`, "", "A")).
		Thresholds(Steps("red", At(1, "green"))).
		ColorScheme(ColorBy(ByThreshold)).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// ReadyzStat returns a stat panel showing the readiness check status.
func ReadyzStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Readyz").
		Description("Readiness check status (1 = ready, 0 = not ready)").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`blt_readyz_up`, "", "A")).
		Thresholds(Steps("red", At(1, "green"))).
		ColorScheme(ColorBy(ByThreshold)).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// NextRunStat returns a stat panel showing the time until the next
// scheduled update-all run.
func NextRunStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Next Update").
		Description("Time until the next scheduled update of all sources").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`blt_scheduler_next_run_timestamp{job=%q} - time()`, Job),
			"", "A",
		)).
		Unit("s").
		Thresholds(Steps("green")).
		ColorScheme(ColorBy(ByThreshold)).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// UptimeStat returns a stat panel showing process uptime.
func UptimeStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Uptime").
		Description("Time since process start").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`time() - process_start_time_seconds{job=%q}`, Job),
			"", "A",
		)).
		Unit("s").
		Thresholds(Steps("green")).
		ColorScheme(ColorBy(ByThreshold)).
		GraphMode(common.BigValueGraphModeNone)
}
