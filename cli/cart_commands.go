package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pharmacart/domain"
)

// findProduct looks the product up on the current catalog page, fetching
// the page first if the listing is empty.
func findProduct(id string) (domain.Product, error) {
	products := catalogStore.Products()
	if len(products) == 0 {
		catalogStore.FetchProducts(context.Background())
		if msg := catalogStore.Err(); msg != "" {
			return domain.Product{}, errors.New(msg)
		}
		products = catalogStore.Products()
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product not on current page: id=%s", id)
}

func printCart(output string) {
	items := cartStore.Items()
	if output == "json" {
		b, _ := json.MarshalIndent(items, "", "  ")
		fmt.Println(string(b))
	} else {
		for _, it := range items {
			fmt.Printf("%s | %s | %.2f x %d = %.2f\n",
				it.Product.ID, it.Product.ProductName, it.Product.Price, it.Quantity,
				it.Product.Price*float64(it.Quantity))
		}
	}
	fmt.Printf("%d items, total %.2f\n", cartStore.TotalItems(), cartStore.TotalPrice())
}

func init() {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}
	rootCmd.AddCommand(cartCmd)

	// add
	var addQty int
	addCmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product from the current page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := findProduct(args[0])
			if err != nil {
				return err
			}
			added := cartStore.AddItem(p, addQty)
			switch {
			case added == 0:
				fmt.Println("nothing added (out of stock or already at stock limit)")
			case added < addQty:
				fmt.Printf("quantity reduced to available stock, added %d\n", added)
			default:
				fmt.Printf("added %d\n", added)
			}
			return nil
		},
	}
	addCmd.Flags().IntVar(&addQty, "quantity", 1, "quantity to add")
	cartCmd.AddCommand(addCmd)

	// remove
	removeCmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cartStore.RemoveItem(args[0])
			fmt.Println("removed")
			return nil
		},
	}
	cartCmd.AddCommand(removeCmd)

	// set
	setCmd := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set a cart line quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity: %s", args[1])
			}
			cartStore.UpdateQuantity(args[0], qty)
			printCart("")
			return nil
		},
	}
	cartCmd.AddCommand(setCmd)

	// inc / dec
	incCmd := &cobra.Command{
		Use:   "inc <product-id>",
		Short: "Add one unit to a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cartStore.IncrementQuantity(args[0])
			printCart("")
			return nil
		},
	}
	cartCmd.AddCommand(incCmd)

	decCmd := &cobra.Command{
		Use:   "dec <product-id>",
		Short: "Remove one unit from a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cartStore.DecrementQuantity(args[0])
			printCart("")
			return nil
		},
	}
	cartCmd.AddCommand(decCmd)

	// show
	var showOutput string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(showOutput)
			return nil
		},
	}
	showCmd.Flags().StringVar(&showOutput, "output", "", "output format")
	cartCmd.AddCommand(showCmd)

	// clear
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cartStore.Clear()
			fmt.Println("cart cleared")
			return nil
		},
	}
	cartCmd.AddCommand(clearCmd)

	// save / load
	var saveFile string
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Write a cart snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := saveFile
			if path == "" {
				path = viper.GetString("cart-file")
			}
			if err := cartStore.Save(path); err != nil {
				return err
			}
			fmt.Printf("cart saved to %s\n", path)
			return nil
		},
	}
	saveCmd.Flags().StringVar(&saveFile, "file", "", "snapshot path (defaults to --cart-file)")
	cartCmd.AddCommand(saveCmd)

	var loadFile string
	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Replace the cart with a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := loadFile
			if path == "" {
				path = viper.GetString("cart-file")
			}
			if err := cartStore.Load(path); err != nil {
				return err
			}
			printCart("")
			return nil
		},
	}
	loadCmd.Flags().StringVar(&loadFile, "file", "", "snapshot path (defaults to --cart-file)")
	cartCmd.AddCommand(loadCmd)
}
