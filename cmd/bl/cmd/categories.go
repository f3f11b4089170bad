package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/buying-list/internal/api/client"
)

func categoriesCmd() *cobra.Command {
	categoriesRoot := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}

	categoriesRoot.AddCommand(
		categoryListCmd(),
		categoryCreateCmd(),
		categoryDeleteCmd(),
		categoryStatsCmd(),
	)

	return categoriesRoot
}

func categoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			cats, err := c.ListCategories(context.Background())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cats)
			}
			return printCategoryTable(os.Stdout, cats)
		},
	}
}

func categoryCreateCmd() *cobra.Command {
	var req apiclient.CategoryRequest

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a category",
		Example: `  bl categories create --name Gadgets --id gadgets --color "#0ea5e9" --icon cpu`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if req.Name == "" {
				return errors.New("--name is required")
			}
			c := newClient()
			cat, err := c.CreateCategory(context.Background(), &req)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cat)
			}
			fmt.Printf("Category created: %s (%s)\n", cat.Name, cat.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.ID, "id", "", "stable ID (generated when empty)")
	cmd.Flags().StringVar(&req.Name, "name", "", "category name")
	cmd.Flags().StringVar(&req.Description, "description", "", "description")
	cmd.Flags().StringVar(&req.Color, "color", "", "hex color, e.g. #3b82f6")
	cmd.Flags().StringVar(&req.Icon, "icon", "", "icon name")
	cmd.Flags().StringVar(&req.ParentID, "parent", "", "parent category ID")
	cmd.Flags().IntVar(&req.Order, "order", 0, "sort order")

	return cmd
}

func categoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long:  "Delete a category. Built-in categories and categories that still hold items cannot be deleted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.DeleteCategory(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Category %s deleted.\n", args[0])
			return nil
		},
	}
}

func categoryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "stats <id>",
		Short:   "Show the price summary of a category",
		Example: `  bl categories stats electronics`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			s, err := c.CategoryStats(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(s)
			}
			tw := newTabWriter(os.Stdout)
			tw.writef("Items:\t%d (%d priced)\n", s.TotalItems, s.PricedItems)
			tw.writef("Total value:\t%s\n", s.TotalValue.StringFixed(2))
			tw.writef("Average:\t%s\n", s.AveragePrice.StringFixed(2))
			tw.writef("Lowest:\t%s\n", s.LowestPrice.StringFixed(2))
			tw.writef("Highest:\t%s\n", s.HighestPrice.StringFixed(2))
			return tw.finish()
		},
	}
}
