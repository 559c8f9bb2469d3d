package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storefront.GO/config"
	catalogService "storefront.GO/service/catalog"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "catalog:seed",
	Short: "Load products, variants and option schemas from a fixture file",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}
		if err := config.AutoMigrate(db); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			return
		}

		res, err := catalogService.SeedFromFile(db, seedFile)
		if err != nil {
			fmt.Printf("Seed failed: %v\n", err)
			return
		}

		for _, w := range res.Warnings {
			fmt.Printf("  [warn] %s\n", w)
		}
		fmt.Printf(`
=== Seed Report ===
Products:   %d
Variants:   %d
Options:    %d
Total time: %s
===================
`, res.Products, res.Variants, res.Options, res.TotalTime.Round(time.Millisecond))
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Fixture file path, YAML or JSON (required)")
	seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
