package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func insightsCmd() *cobra.Command {
	insightsRoot := &cobra.Command{
		Use:     "insights",
		Aliases: []string{"in"},
		Short:   "Compare sources and decide when to buy",
	}

	insightsRoot.AddCommand(
		compareCmd(),
		historyCmd(),
		statsCmd(),
		recommendCmd(),
	)

	return insightsRoot
}

func compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "compare <item-id>",
		Short:   "Rank an item's sources by current price",
		Example: `  bl insights compare 1f0c...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			cmp, err := c.Comparison(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmp)
			}
			if cmp == nil {
				fmt.Println("No source has a price yet.")
				return nil
			}
			return printComparison(os.Stdout, cmp)
		},
	}
}

func historyCmd() *cobra.Command {
	var (
		sourceID string
		days     int
	)

	cmd := &cobra.Command{
		Use:   "history <item-id>",
		Short: "Show recorded prices",
		Example: `  bl insights history 1f0c...
  bl insights history 1f0c... --source 5e1d... --days 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			points, err := c.History(context.Background(), args[0], sourceID, days)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(points)
			}
			if len(points) == 0 {
				fmt.Println("No prices recorded.")
				return nil
			}
			return printHistoryTable(os.Stdout, points)
		},
	}
	cmd.Flags().StringVar(&sourceID, "source", "", "only this source")
	cmd.Flags().IntVar(&days, "days", 0, "trailing window in days (default from server config)")

	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "stats <item-id> <source-id>",
		Short:   "Show price statistics for a source",
		Example: `  bl insights stats 1f0c... 5e1d...`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			stats, err := c.Statistics(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(stats)
			}
			if stats == nil {
				fmt.Println("No prices in the window.")
				return nil
			}
			return printStatistics(os.Stdout, stats)
		},
	}
}

func recommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "recommend <item-id>",
		Short:   "Should I buy now?",
		Example: `  bl insights recommend 1f0c...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			rec, err := c.Recommendation(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(rec)
			}
			if rec == nil {
				fmt.Println("No source has a price yet.")
				return nil
			}
			fmt.Printf("%s (confidence %d%%)\n%s\n", rec.Decision, rec.Confidence, rec.Reason)
			if rec.BestSourceName != "" {
				fmt.Printf("Best source: %s\n", rec.BestSourceName)
			}
			return nil
		},
	}
}
