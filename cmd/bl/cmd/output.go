package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	apiclient "github.com/donaldgifford/buying-list/internal/api/client"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

const timeLayout = "2006-01-02 15:04"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printItemTable(w io.Writer, items []domain.Item) error {
	tw := newTabWriter(w)
	tw.writef("ID\tNAME\tCATEGORY\tPRIORITY\tSTATUS\tLOWEST\tSOURCES\n")
	for i := range items {
		it := &items[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			it.ID,
			truncate(it.Name, 40),
			it.CategoryID,
			it.Priority,
			it.Status,
			formatPrice(it.LowestPrice()),
			len(it.Sources),
		)
	}
	return tw.finish()
}

func printItemDetail(w io.Writer, it *domain.Item) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", it.ID)
	tw.writef("Name:\t%s\n", it.Name)
	if it.Description != "" {
		tw.writef("Description:\t%s\n", it.Description)
	}
	tw.writef("Category:\t%s\n", it.CategoryID)
	tw.writef("Priority:\t%s\n", it.Priority)
	tw.writef("Status:\t%s\n", it.Status)
	if len(it.Tags) > 0 {
		tw.writef("Tags:\t%s\n", strings.Join(it.Tags, ", "))
	}
	if it.TargetBudget != nil {
		tw.writef("Budget:\t%s\n", it.TargetBudget.StringFixed(2))
	}
	tw.writef("Lowest:\t%s\n", formatPrice(it.LowestPrice()))
	tw.writef("Added:\t%s\n", it.DateAdded.Format(timeLayout))
	if err := tw.finish(); err != nil {
		return err
	}

	if len(it.Sources) > 0 {
		if _, err := fmt.Fprintln(w, "\nSources:"); err != nil {
			return err
		}
		if err := printSourceTable(w, it.Sources); err != nil {
			return err
		}
	}
	if len(it.Alerts) > 0 {
		if _, err := fmt.Fprintln(w, "\nAlerts:"); err != nil {
			return err
		}
		return printAlertTable(w, it.Alerts)
	}
	return nil
}

func printSourceTable(w io.Writer, sources []domain.Source) error {
	tw := newTabWriter(w)
	tw.writef("ID\tNAME\tPRICE\tCURRENCY\tUPDATED\tACTIVE\tURL\n")
	for i := range sources {
		s := &sources[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%v\t%s\n",
			s.ID,
			s.Name,
			formatPrice(s.CurrentPrice),
			s.Currency,
			formatTime(s.LastUpdated),
			s.Active,
			truncate(s.URL, 50),
		)
	}
	return tw.finish()
}

func printAlertTable(w io.Writer, alerts []domain.Alert) error {
	tw := newTabWriter(w)
	tw.writef("ID\tSOURCE\tCONDITION\tTARGET\tACTIVE\tTRIGGERED\n")
	for i := range alerts {
		a := &alerts[i]
		tw.writef("%s\t%s\t%s\t%s\t%v\t%s\n",
			a.ID,
			a.SourceID,
			a.Condition,
			a.TargetPrice.StringFixed(2),
			a.Active,
			formatTime(a.TriggeredAt),
		)
	}
	return tw.finish()
}

func printExtraction(w io.Writer, res *domain.ExtractionResult) error {
	tw := newTabWriter(w)
	if !res.Success {
		tw.writef("Result:\tfailed\n")
		tw.writef("Error:\t%s\n", res.Error)
		if res.MatchedText != "" {
			tw.writef("Page text:\t%s\n", res.MatchedText)
		}
		return tw.finish()
	}
	tw.writef("Price:\t%s\n", formatPrice(res.Price))
	tw.writef("Changed:\t%v\n", res.Changed)
	tw.writef("Selector:\t%s\n", res.UsedSelector)
	tw.writef("Stage:\t%s\n", res.Stage)
	tw.writef("Confidence:\t%d\n", res.Confidence)
	tw.writef("Matched:\t%s\n", truncate(res.MatchedText, 60))
	return tw.finish()
}

func printComparison(w io.Writer, c *domain.ComparisonSnapshot) error {
	tw := newTabWriter(w)
	tw.writef("RANK\tSOURCE\tPRICE\tCURRENCY\tUPDATED\n")
	for i := range c.Entries {
		e := &c.Entries[i]
		tw.writef("%d\t%s\t%s\t%s\t%s\n", i+1, e.SourceName, e.Price.StringFixed(2), e.Currency, formatTime(e.LastUpdated))
	}
	tw.writef("\nBest:\t%s\n", c.BestPrice.StringFixed(2))
	tw.writef("Savings:\t%s\n", c.Savings.StringFixed(2))
	return tw.finish()
}

func printStatistics(w io.Writer, s *domain.Statistics) error {
	tw := newTabWriter(w)
	tw.writef("Window:\t%d days (%d samples)\n", s.WindowDays, s.SampleCount)
	tw.writef("Current:\t%s\n", s.Current.StringFixed(2))
	tw.writef("Previous:\t%s\n", s.Previous.StringFixed(2))
	tw.writef("Average:\t%s\n", s.Average.StringFixed(2))
	tw.writef("Lowest:\t%s\n", s.Lowest.StringFixed(2))
	tw.writef("Highest:\t%s\n", s.Highest.StringFixed(2))
	tw.writef("Change:\t%s%%\n", s.ChangePercent.StringFixed(2))
	tw.writef("Trend:\t%s\n", s.Trend)
	return tw.finish()
}

func printHistoryTable(w io.Writer, points []domain.PricePoint) error {
	tw := newTabWriter(w)
	tw.writef("TIME\tSOURCE\tPRICE\n")
	for i := range points {
		tw.writef("%s\t%s\t%s\n", points[i].Timestamp.Format(timeLayout), points[i].SourceID, points[i].Price.StringFixed(2))
	}
	return tw.finish()
}

func printCategoryTable(w io.Writer, cats []domain.Category) error {
	tw := newTabWriter(w)
	tw.writef("ID\tNAME\tCOLOR\tICON\tORDER\tDEFAULT\n")
	for i := range cats {
		c := &cats[i]
		tw.writef("%s\t%s\t%s\t%s\t%d\t%v\n", c.ID, c.Name, c.Color, c.Icon, c.Order, c.IsDefault)
	}
	return tw.finish()
}

func printSummary(w io.Writer, s *domain.ListSummary) error {
	tw := newTabWriter(w)
	tw.writef("Items:\t%d\n", s.TotalItems)
	for _, st := range []domain.Status{domain.StatusWishlist, domain.StatusNeeded, domain.StatusPurchased} {
		tw.writef("  %s:\t%d\n", st, s.ByStatus[st])
	}
	tw.writef("Estimated value:\t%s\n", s.EstimatedValue.StringFixed(2))
	tw.writef("Categories:\t%d\n", s.Categories)
	tw.writef("Sources:\t%d (%d active)\n", s.Sources, s.ActiveSources)
	tw.writef("Alerts:\t%d (%d active)\n", s.Alerts, s.ActiveAlerts)
	return tw.finish()
}

func printSchedulerStatus(w io.Writer, s *apiclient.SchedulerStatus, q *apiclient.Quota) error {
	tw := newTabWriter(w)
	tw.writef("Running:\t%v\n", s.Running)
	tw.writef("Interval:\t%s\n", s.Interval)
	tw.writef("Next run:\t%s\n", formatTime(s.NextRun))
	tw.writef("Last run:\t%s\n", formatTime(s.LastRun))
	if s.LastSummary != nil {
		tw.writef("Last result:\t%s\n", formatBatch(s.LastSummary))
	}
	if q.Remaining < 0 {
		tw.writef("Fetches today:\t%d (no daily limit)\n", q.DailyUsed)
	} else {
		tw.writef("Fetches today:\t%d of %d, resets %s\n", q.DailyUsed, q.DailyLimit, formatTime(q.ResetAt))
	}
	if q.Exhausted {
		tw.writef("Fetch budget:\tspent, refreshes are refused until reset\n")
	}
	return tw.finish()
}

func formatBatch(b *domain.BatchSummary) string {
	return fmt.Sprintf("%d sources, %d ok, %d failed, %d changed in %s",
		b.Total, b.Succeeded, b.Failed, b.Changed, b.Duration.Round(time.Millisecond))
}

func formatPrice(p *decimal.Decimal) string {
	if p == nil {
		return "-"
	}
	return p.StringFixed(2)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
