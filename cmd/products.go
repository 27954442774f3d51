package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adcraftlabs/adcraft/internal/transport"
)

var productQuery transport.ProductQuery

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the product catalog",
	RunE:  runProducts,
}

func init() {
	productsCmd.Flags().StringVar(&productQuery.Category, "category", "", "filter by category")
	productsCmd.Flags().StringVar(&productQuery.SubCategory, "sub-category", "", "filter by sub-category")
	productsCmd.Flags().StringVar(&productQuery.Search, "search", "", "free-text search")
	productsCmd.Flags().IntVar(&productQuery.Limit, "limit", 20, "maximum results")
	rootCmd.AddCommand(productsCmd)
}

func runProducts(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	products, err := rt.client.ListProducts(cmd.Context(), productQuery)
	if err != nil {
		return fmt.Errorf("listing products: %w", err)
	}

	if len(products) == 0 {
		fmt.Println("No products matched.")
		return nil
	}

	for _, p := range products {
		fmt.Printf("%-12s %-32s", p.SKU, p.ProductName)
		if p.Category != "" {
			fmt.Printf("  %s", p.Category)
		}
		if p.Price > 0 {
			fmt.Printf("  $%.2f", p.Price)
		}
		fmt.Println()
		if p.Description != "" {
			fmt.Printf("             %s\n", p.Description)
		}
	}
	return nil
}
