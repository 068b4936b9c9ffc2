package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perkwise-dev/perkwise/internal/cards"
	"github.com/perkwise-dev/perkwise/internal/model"
)

func newLinkCommand() *cobra.Command {
	var dir string
	var productID string

	cmd := &cobra.Command{
		Use:   "link <account-id>",
		Short: "Link an account to a card product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(dir)
			if err != nil {
				return err
			}
			defer e.close()

			catalog, err := cards.Load(cmd.Context(), e.store)
			if err != nil {
				return err
			}
			product, ok := catalog.Get(productID)
			if !ok {
				return fmt.Errorf("unknown card product %q", productID)
			}

			link := model.LinkedAccount{
				AccountID: args[0],
				ProductID: product.ID,
				UserID:    e.cfg.User.ID,
			}
			if err := e.store.LinkAccount(cmd.Context(), link); err != nil {
				return err
			}

			fmt.Printf("Linked account %s to %s (%d benefits)\n", args[0], product.Name, len(product.Benefits))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().StringVar(&productID, "product", "", "card product ID (required)")
	_ = cmd.MarkFlagRequired("product")

	return cmd
}
