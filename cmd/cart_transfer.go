package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront.GO/client"
	"storefront.GO/core/auth"
	cartEntity "storefront.GO/model/entity/cart"
)

var (
	transferBaseURL   string
	transferUserID    string
	transferAction    string
	transferTokenFile string
)

var cartTransferCmd = &cobra.Command{
	Use:   "cart:transfer",
	Short: "Reconcile the local guest cart into a user cart on a running server",
	Run: func(cmd *cobra.Command, args []string) {
		tokens, err := client.NewFileTokenStore(transferTokenFile)
		if err != nil {
			fmt.Printf("Token store: %v\n", err)
			return
		}

		store := client.NewHTTPClient(transferBaseURL, tokens)
		sig := ""
		if key := os.Getenv("STORE_CRYPT_KEY"); key != "" {
			sig = auth.SignUserID(transferUserID, key)
		}
		store.SetUser(transferUserID, sig)

		rec := client.NewReconciler(store, tokens)
		rec.SetUser(transferUserID)

		ctx := context.Background()
		state := rec.CheckConflicts(ctx, true)
		if state != client.StateConflictDetected {
			fmt.Printf("No cart conflict for user %s (state: %s)\n", transferUserID, state)
			return
		}

		result, err := rec.Resolve(ctx, cartEntity.TransferAction(transferAction))
		if err != nil {
			fmt.Printf("Transfer failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Transfer (%s) complete: cart %s now has %d items, total %s\n",
			transferAction, result.CartID, result.TotalItems, result.TotalPrice.StringFixed(2))
	},
}

func init() {
	cartTransferCmd.Flags().StringVar(&transferBaseURL, "url", "http://localhost:8080", "Cart store base URL")
	cartTransferCmd.Flags().StringVarP(&transferUserID, "user", "u", "", "Target user id (required)")
	cartTransferCmd.MarkFlagRequired("user")
	cartTransferCmd.Flags().StringVarP(&transferAction, "action", "a", string(cartEntity.ActionMerge), "Transfer action: merge, replace or copy")
	cartTransferCmd.Flags().StringVar(&transferTokenFile, "token-file", "", "Guest token file (defaults to the user cache dir)")
	rootCmd.AddCommand(cartTransferCmd)
}
