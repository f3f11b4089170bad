package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/buying-list/internal/api/client"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func settingsCmd() *cobra.Command {
	var (
		currency      string
		interval      time.Duration
		notifications bool
		theme         string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the runtime settings",
		Long: "Without flags, prints the settings and the list summary. With flags,\n" +
			"changes only the settings given. A new interval reschedules the refresh.",
		Example: `  bl settings
  bl settings --interval 30m --currency SAR
  bl settings --notifications=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()
			ctx := context.Background()

			if !anyChanged(cmd, "currency", "interval", "notifications", "theme") {
				return showSettings(ctx, c)
			}

			patch := &apiclient.SettingsPatch{}
			set := cmd.Flags().Changed
			if set("currency") {
				patch.DefaultCurrency = &currency
			}
			if set("interval") {
				ms := interval.Milliseconds()
				patch.UpdateIntervalMs = &ms
			}
			if set("notifications") {
				patch.NotificationsEnabled = &notifications
			}
			if set("theme") {
				t := domain.Theme(theme)
				patch.Theme = &t
			}

			s, err := c.UpdateSettings(ctx, patch)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(s)
			}
			fmt.Println("Settings updated.")
			return printSettings(os.Stdout, s)
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "default currency for new sources")
	cmd.Flags().DurationVar(&interval, "interval", 0, "price refresh interval (at least 1m)")
	cmd.Flags().BoolVar(&notifications, "notifications", true, "send alert notifications")
	cmd.Flags().StringVar(&theme, "theme", "", "light, dark or auto")

	return cmd
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

func showSettings(ctx context.Context, c *apiclient.Client) error {
	s, err := c.GetSettings(ctx)
	if err != nil {
		return err
	}
	sum, err := c.Summary(ctx)
	if err != nil {
		return err
	}
	if jsonOutput() {
		return outputJSON(map[string]any{"settings": s, "summary": sum})
	}
	if err := printSettings(os.Stdout, s); err != nil {
		return err
	}
	fmt.Println()
	return printSummary(os.Stdout, sum)
}

func printSettings(w io.Writer, s *domain.Settings) error {
	tw := newTabWriter(w)
	tw.writef("Currency:\t%s\n", s.DefaultCurrency)
	tw.writef("Interval:\t%s\n", s.UpdateInterval())
	tw.writef("Notifications:\t%v\n", s.NotificationsEnabled)
	tw.writef("Theme:\t%s\n", s.Theme)
	return tw.finish()
}

func refreshCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh every active source now",
		Long: "Fetches every active source and extracts its price, the same run the\n" +
			"scheduler performs. With --status, prints the scheduler state instead.",
		Example: `  bl refresh
  bl refresh --status`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			if status {
				s, err := c.SchedulerStatus(context.Background())
				if err != nil {
					return err
				}
				q, err := c.Quota(context.Background())
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(map[string]any{"scheduler": s, "quota": q})
				}
				return printSchedulerStatus(os.Stdout, s, q)
			}

			sum, err := c.RefreshAll(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(sum)
			}
			fmt.Printf("Refreshed %s.\n", formatBatch(sum))
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "show the scheduler state")

	return cmd
}

func extractCmd() *cobra.Command {
	var (
		file      string
		url       string
		selectors []string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Test selectors against a page through the server",
		Long: "Sends a saved page (--file) or a URL for the server to fetch (--url) to the\n" +
			"extract endpoint and prints what the pipeline finds. Nothing is stored.",
		Example: `  bl extract --url https://shop.example/p/1 --selector .price
  bl extract --file page.html --selector "#price" --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (file == "") == (url == "") {
				return errors.New("exactly one of --file or --url is required")
			}
			req := &apiclient.ExtractRequest{URL: url, Selectors: selectors}
			if file != "" {
				data, err := os.ReadFile(file) //nolint:gosec // path from CLI flag
				if err != nil {
					return fmt.Errorf("reading markup: %w", err)
				}
				req.Markup = string(data)
			}

			c := newClient()
			res, err := c.Extract(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(res)
			}
			return printExtraction(os.Stdout, res)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "saved page to send")
	cmd.Flags().StringVar(&url, "url", "", "page for the server to fetch")
	cmd.Flags().StringArrayVar(&selectors, "selector", nil, "CSS selector (repeatable)")

	return cmd
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Download all items, categories and settings as JSON",
		Example: `  bl export --file backup.json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			doc, err := c.Export(context.Background())
			if err != nil {
				return err
			}
			if out == "" {
				return outputJSON(doc)
			}
			if err := os.WriteFile(out, doc, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Printf("Exported to %s.\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "file", "", "write to this file instead of stdout")

	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "import <file>",
		Short:   "Replace all data with an exported document",
		Example: `  bl import backup.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) //nolint:gosec // path from CLI argument
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			if !json.Valid(data) {
				return fmt.Errorf("%s is not valid JSON", args[0])
			}
			c := newClient()
			items, cats, err := c.Import(context.Background(), data)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d items and %d categories.\n", items, cats)
			return nil
		},
	}
}
