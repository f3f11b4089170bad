package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func alertsCmd() *cobra.Command {
	alertsRoot := &cobra.Command{
		Use:   "alerts",
		Short: "Manage price alerts",
		Long: "An alert watches one source and fires once when a refreshed price meets\n" +
			"its condition. Toggle it to arm it again.",
	}

	alertsRoot.AddCommand(
		alertListCmd(),
		alertAddCmd(),
		alertRemoveCmd(),
		alertToggleCmd(),
	)

	return alertsRoot
}

func alertListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list <item-id>",
		Short:   "List the alerts of an item",
		Example: `  bl alerts list 1f0c...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			it, err := c.GetItem(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(it.Alerts)
			}
			if len(it.Alerts) == 0 {
				fmt.Println("No alerts found.")
				return nil
			}
			return printAlertTable(os.Stdout, it.Alerts)
		},
	}
}

func alertAddCmd() *cobra.Command {
	var (
		sourceID  string
		target    string
		condition string
	)

	cmd := &cobra.Command{
		Use:   "add <item-id>",
		Short: "Add an alert to one of the item's sources",
		Example: `  bl alerts add 1f0c... --source 5e1d... --target 999 --condition below
  bl alerts add 1f0c... --source 5e1d... --target 1200 --condition above`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if sourceID == "" || target == "" {
				return errors.New("--source and --target are required")
			}
			price, err := decimal.NewFromString(target)
			if err != nil {
				return fmt.Errorf("invalid target %q: %w", target, err)
			}
			cond := domain.AlertCondition(condition)
			if !cond.Valid() {
				return fmt.Errorf("invalid condition %q: must be below, above or equal", condition)
			}

			c := newClient()
			a, err := c.AddAlert(context.Background(), args[0], sourceID, price, cond)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			fmt.Printf("Alert created: %s %s (%s)\n", a.Condition, a.TargetPrice.StringFixed(2), a.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceID, "source", "", "source ID")
	cmd.Flags().StringVar(&target, "target", "", "target price")
	cmd.Flags().StringVar(&condition, "condition", string(domain.ConditionBelow), "below, above or equal")

	return cmd
}

func alertRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <item-id> <alert-id>",
		Short:   "Remove an alert",
		Example: `  bl alerts remove 1f0c... a71c...`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.RemoveAlert(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Alert %s removed.\n", args[1])
			return nil
		},
	}
}

func alertToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <item-id> <alert-id>",
		Short:   "Switch an alert on or off",
		Example: `  bl alerts toggle 1f0c... a71c...`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			a, err := c.ToggleAlert(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(a)
			}
			state := "off"
			if a.Active {
				state = "on"
			}
			fmt.Printf("Alert %s is %s.\n", a.ID, state)
			return nil
		},
	}
}
