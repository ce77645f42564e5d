package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pharmacart/catalog"
	"pharmacart/domain"
)

// printListing writes the current catalog page, either as a table or JSON,
// and surfaces a stored fetch error if the last fetch failed.
func printListing(output string) error {
	if msg := catalogStore.Err(); msg != "" {
		return errors.New(msg)
	}
	products := catalogStore.Products()
	if output == "json" {
		b, _ := json.MarshalIndent(products, "", "  ")
		fmt.Println(string(b))
	} else {
		for _, p := range products {
			fmt.Printf("%s | %s | %s | %.2f | %d | %s | %s\n",
				p.ID, p.ProductName, p.Barcode, p.Price, p.Quantity, p.ExpireDate, p.ManufactName)
		}
	}
	if pg := catalogStore.Pagination(); pg != nil {
		fmt.Printf("page %d/%d (%d records)\n", pg.CurrentPage, pg.TotalPages, pg.TotalRecords)
	}
	return nil
}

func init() {
	// browse
	var bSearch, bOutput string
	var bPage, bSize int
	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Fetch and show a catalog page",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []catalog.FetchOption
			if cmd.Flags().Changed("search") {
				opts = append(opts, catalog.WithSearchQuery(bSearch))
			}
			if cmd.Flags().Changed("page") {
				opts = append(opts, catalog.WithPage(bPage))
			}
			if cmd.Flags().Changed("size") {
				opts = append(opts, catalog.WithPageSize(bSize))
			}
			catalogStore.FetchProducts(context.Background(), opts...)
			return printListing(bOutput)
		},
	}
	browseCmd.Flags().StringVar(&bSearch, "search", "", "free-text search")
	browseCmd.Flags().IntVar(&bPage, "page", 1, "page number")
	browseCmd.Flags().IntVar(&bSize, "size", domain.DefaultPageSize, "page size")
	browseCmd.Flags().StringVar(&bOutput, "output", "", "output format")
	rootCmd.AddCommand(browseCmd)

	// search
	var sOutput string
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search products by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogStore.SetSearchQuery(args[0])
			catalogStore.FetchProducts(context.Background())
			return printListing(sOutput)
		},
	}
	searchCmd.Flags().StringVar(&sOutput, "output", "", "output format")
	rootCmd.AddCommand(searchCmd)

	// filter
	filterCmd := &cobra.Command{
		Use:   "filter",
		Short: "Change a catalog filter and refetch",
	}

	manufacturerCmd := &cobra.Command{
		Use:   "manufacturer [name]",
		Short: "Filter by manufacturer; omit the name to clear",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m *string
			if len(args) == 1 {
				m = &args[0]
			}
			catalogStore.SetManufacturer(context.Background(), m)
			return printListing("")
		},
	}
	filterCmd.AddCommand(manufacturerCmd)

	var fMin, fMax float64
	priceCmd := &cobra.Command{
		Use:   "price",
		Short: "Filter by price range",
		RunE: func(cmd *cobra.Command, args []string) error {
			var minPtr, maxPtr *float64
			if cmd.Flags().Changed("min") {
				minPtr = &fMin
			}
			if cmd.Flags().Changed("max") {
				maxPtr = &fMax
			}
			catalogStore.SetPriceRange(context.Background(), minPtr, maxPtr)
			return printListing("")
		},
	}
	priceCmd.Flags().Float64Var(&fMin, "min", 0, "min price")
	priceCmd.Flags().Float64Var(&fMax, "max", 0, "max price")
	filterCmd.AddCommand(priceCmd)

	sortCmd := &cobra.Command{
		Use:   "sort <key>",
		Short: "Sort the listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogStore.SetSortBy(context.Background(), args[0])
			return printListing("")
		},
	}
	filterCmd.AddCommand(sortCmd)

	categoryCmd := &cobra.Command{
		Use:   "category [id]",
		Short: "Filter by category id; omit the id to clear",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cat *int
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid category id: %s", args[0])
				}
				cat = &n
			}
			catalogStore.SetCategoryID(context.Background(), cat)
			return printListing("")
		},
	}
	filterCmd.AddCommand(categoryCmd)

	pageSizeCmd := &cobra.Command{
		Use:   "page-size <n>",
		Short: "Change the page size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid page size: %s", args[0])
			}
			catalogStore.SetPageSize(context.Background(), n)
			return printListing("")
		},
	}
	filterCmd.AddCommand(pageSizeCmd)
	rootCmd.AddCommand(filterCmd)

	// page
	pageCmd := &cobra.Command{
		Use:   "page <next|prev|N>",
		Short: "Navigate between pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			switch args[0] {
			case "next":
				catalogStore.GoToNextPage(ctx)
			case "prev":
				catalogStore.GoToPreviousPage(ctx)
			default:
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid page: %s", args[0])
				}
				catalogStore.GoToPage(ctx, n)
			}
			return printListing("")
		},
	}
	rootCmd.AddCommand(pageCmd)

	// reset
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore default filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogStore.ResetFilters()
			fmt.Println("filters reset")
			return nil
		},
	}
	rootCmd.AddCommand(resetCmd)

	// manufacturers
	manufacturersCmd := &cobra.Command{
		Use:   "manufacturers",
		Short: "List manufacturers on the current page",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, m := range catalogStore.Manufacturers() {
				fmt.Println(m)
			}
			return nil
		},
	}
	rootCmd.AddCommand(manufacturersCmd)
}
