package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/buying-list/internal/api/client"
	"github.com/donaldgifford/buying-list/internal/api/handlers"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func itemsCmd() *cobra.Command {
	itemsRoot := &cobra.Command{
		Use:   "items",
		Short: "Manage items",
		Long:  "Manage the items on the buying list: what to buy, how badly, and for how much.",
	}

	itemsRoot.AddCommand(
		itemListCmd(),
		itemGetCmd(),
		itemCreateCmd(),
		itemUpdateCmd(),
		itemDeleteCmd(),
		itemReorderCmd(),
	)

	return itemsRoot
}

func itemListCmd() *cobra.Command {
	var (
		filterArgs []string
		sortBy     string
		desc       bool
		limit      int
		offset     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items",
		Example: `  bl items list
  bl items list --filter category=electronics --filter priority=high,medium
  bl items list --filter max_price=500 --sort price
  bl items list --filter "search=noise cancelling" --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			filter, err := handlers.ParseFilters(filterArgs)
			if err != nil {
				return fmt.Errorf("parsing filters: %w", err)
			}
			c := newClient()
			resp, err := c.ListItems(context.Background(), &apiclient.ListItemsParams{
				Filter: filter,
				SortBy: sortBy,
				Desc:   desc,
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(resp)
			}
			if len(resp.Items) == 0 {
				fmt.Println("No items found.")
				return nil
			}
			if err := printItemTable(os.Stdout, resp.Items); err != nil {
				return err
			}
			if resp.Total > len(resp.Items) {
				fmt.Printf("\nShowing %d of %d items.\n", len(resp.Items), resp.Total)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&filterArgs, "filter", nil,
		"filters (key=value): category, status, priority, tag, min_price, max_price, search")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort by name, price, priority, date_added, category or order")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of items")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")

	return cmd
}

func itemGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show item details with its sources and alerts",
		Example: `  bl items get 1f0c...
  bl items get 1f0c... --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			it, err := c.GetItem(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(it)
			}
			return printItemDetail(os.Stdout, it)
		},
	}
}

// itemFlags holds the flags shared by create and update.
type itemFlags struct {
	name        string
	description string
	category    string
	priority    string
	status      string
	tags        []string
	notes       string
	budget      string
	quantity    int
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "item name")
	cmd.Flags().StringVar(&f.description, "description", "", "item description")
	cmd.Flags().StringVar(&f.category, "category", "", "category ID")
	cmd.Flags().StringVar(&f.priority, "priority", "", "priority (low, medium, high)")
	cmd.Flags().StringVar(&f.status, "status", "", "status (wishlist, needed, purchased)")
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&f.budget, "budget", "", "target budget")
	cmd.Flags().IntVar(&f.quantity, "quantity", 0, "quantity to buy")
}

// request builds an item request holding only the flags the user set.
func (f *itemFlags) request(cmd *cobra.Command) (*apiclient.ItemRequest, error) {
	req := &apiclient.ItemRequest{}
	set := cmd.Flags().Changed

	if set("name") {
		req.Name = &f.name
	}
	if set("description") {
		req.Description = &f.description
	}
	if set("category") {
		req.CategoryID = &f.category
	}
	if set("priority") {
		p := domain.Priority(f.priority)
		req.Priority = &p
	}
	if set("status") {
		s := domain.Status(f.status)
		req.Status = &s
	}
	if set("tag") {
		req.Tags = &f.tags
	}
	if set("notes") {
		req.Notes = &f.notes
	}
	if set("budget") {
		b, err := decimal.NewFromString(f.budget)
		if err != nil {
			return nil, fmt.Errorf("invalid budget %q: %w", f.budget, err)
		}
		req.TargetBudget = &b
	}
	if set("quantity") {
		req.Quantity = &f.quantity
	}
	return req, nil
}

func itemCreateCmd() *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new item",
		Long: "Create a new item. Category defaults to other, priority to medium and\n" +
			"status to wishlist. Add sources with 'bl sources add' to start tracking prices.",
		Example: `  bl items create --name "Noise cancelling headphones" --category electronics
  bl items create --name "Desk lamp" --priority high --budget 250 --tag office --tag lighting`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.name == "" {
				return errors.New("--name is required")
			}
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			c := newClient()
			created, err := c.CreateItem(context.Background(), req)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(created)
			}
			fmt.Printf("Item created: %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func itemUpdateCmd() *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an item",
		Long:  "Update an item. Only the flags given are changed.",
		Example: `  bl items update 1f0c... --status purchased
  bl items update 1f0c... --priority low --tag gift`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			c := newClient()
			updated, err := c.UpdateItem(context.Background(), args[0], req)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(updated)
			}
			fmt.Printf("Item %s updated.\n", updated.ID)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func itemDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete an item with its sources, history and alerts",
		Example: `  bl items delete 1f0c...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.DeleteItem(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Item %s deleted.\n", args[0])
			return nil
		},
	}
}

func itemReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "reorder <id>...",
		Short:   "Set the manual order of items",
		Example: `  bl items reorder 1f0c... 9a2b... 77de...`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			if err := c.ReorderItems(context.Background(), args); err != nil {
				return err
			}
			fmt.Printf("Reordered %d items.\n", len(args))
			return nil
		},
	}
}
