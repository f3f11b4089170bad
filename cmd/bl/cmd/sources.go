package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/buying-list/internal/api/client"
)

func sourcesCmd() *cobra.Command {
	sourcesRoot := &cobra.Command{
		Use:   "sources",
		Short: "Manage the shop pages tracked for an item",
		Long: "Each source is one product page with the CSS selectors that locate its\n" +
			"price. Refreshing a source fetches the page and extracts the price.",
	}

	sourcesRoot.AddCommand(
		sourceAddCmd(),
		sourceUpdateCmd(),
		sourceRemoveCmd(),
		sourcePriceCmd(),
		sourceRefreshCmd(),
	)

	return sourcesRoot
}

func sourceAddCmd() *cobra.Command {
	var (
		name      string
		url       string
		selectors []string
		currency  string
		inactive  bool
	)

	cmd := &cobra.Command{
		Use:   "add <item-id>",
		Short: "Add a source to an item",
		Example: `  bl sources add 1f0c... --name Amazon --url https://www.amazon.sa/dp/B0TEST \
    --selector ".a-price .a-offscreen" --selector "#priceblock_ourprice"`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if name == "" || url == "" || len(selectors) == 0 {
				return errors.New("--name, --url and at least one --selector are required")
			}
			active := !inactive
			c := newClient()
			src, err := c.AddSource(context.Background(), args[0], &apiclient.SourceRequest{
				Name:      name,
				URL:       url,
				Selectors: selectors,
				Currency:  currency,
				Active:    &active,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(src)
			}
			fmt.Printf("Source added: %s (%s)\n", src.Name, src.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "shop name")
	cmd.Flags().StringVar(&url, "url", "", "product page URL")
	cmd.Flags().StringArrayVar(&selectors, "selector", nil, "CSS selector for the price (repeatable, tried in order)")
	cmd.Flags().StringVar(&currency, "currency", "", "currency label (default from settings)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "add the source switched off so refreshes skip it")

	return cmd
}

func sourceUpdateCmd() *cobra.Command {
	var (
		name      string
		url       string
		selectors []string
		currency  string
		active    bool
	)

	cmd := &cobra.Command{
		Use:   "update <item-id> <source-id>",
		Short: "Update a source",
		Long:  "Update a source. Only the flags given are changed; --selector replaces the whole list.",
		Example: `  bl sources update 1f0c... 5e1d... --selector ".price-now"
  bl sources update 1f0c... 5e1d... --active=false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := &apiclient.SourcePatch{}
			set := cmd.Flags().Changed
			if set("name") {
				patch.Name = &name
			}
			if set("url") {
				patch.URL = &url
			}
			if set("selector") {
				patch.Selectors = &selectors
			}
			if set("currency") {
				patch.Currency = &currency
			}
			if set("active") {
				patch.Active = &active
			}

			c := newClient()
			src, err := c.UpdateSource(context.Background(), args[0], args[1], patch)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(src)
			}
			fmt.Printf("Source %s updated.\n", src.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "shop name")
	cmd.Flags().StringVar(&url, "url", "", "product page URL")
	cmd.Flags().StringArrayVar(&selectors, "selector", nil, "CSS selector for the price (repeatable)")
	cmd.Flags().StringVar(&currency, "currency", "", "currency label")
	cmd.Flags().BoolVar(&active, "active", true, "whether refreshes include this source")

	return cmd
}

func sourceRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <item-id> <source-id>",
		Short:   "Remove a source with its price history and alerts",
		Example: `  bl sources remove 1f0c... 5e1d...`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.RemoveSource(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Source %s removed.\n", args[1])
			return nil
		},
	}
}

func sourcePriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price <item-id> <source-id> <price>",
		Short: "Record a price by hand",
		Long: "Record a price by hand. The price is added to the history even when it\n" +
			"has not changed. Alerts are not evaluated for manual prices.",
		Example: `  bl sources price 1f0c... 5e1d... 1299.00`,
		Args:    cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			price, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[2], err)
			}
			c := newClient()
			src, err := c.SetPrice(context.Background(), args[0], args[1], price)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(src)
			}
			fmt.Printf("Price of %s set to %s.\n", src.Name, formatPrice(src.CurrentPrice))
			return nil
		},
	}
}

func sourceRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "refresh <item-id> <source-id>",
		Short:   "Fetch a source page and extract its price now",
		Example: `  bl sources refresh 1f0c... 5e1d...`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			res, err := c.RefreshSource(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(res)
			}
			return printExtraction(os.Stdout, res)
		},
	}
}
