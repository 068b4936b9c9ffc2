package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/perkwise-dev/perkwise/internal/cards"
	"github.com/perkwise-dev/perkwise/internal/period"
)

func newStatusCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current-period benefit usage per linked account",
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

			links, err := e.store.LinkedAccounts(cmd.Context(), e.cfg.User.ID)
			if err != nil {
				return err
			}
			if len(links) == 0 {
				fmt.Println("No linked accounts. Use `perkwise link` first.")
				return nil
			}

			now := time.Now()
			for _, link := range links {
				product, ok := catalog.Get(link.ProductID)
				if !ok {
					continue
				}
				fmt.Printf("%s (%s)\n", link.AccountID, product.Name)

				for _, benefit := range product.Benefits {
					if !benefit.Active {
						continue
					}
					p := period.Resolve(benefit.Timing, now)

					usage, ok, err := e.store.UsageFor(cmd.Context(), benefit.ID, link.AccountID, now)
					if err != nil {
						return err
					}

					used := "0.00"
					remaining := benefit.MaxAmount.StringFixed(2)
					if ok {
						used = usage.UsedAmount.StringFixed(2)
						remaining = usage.Remaining.StringFixed(2)
					}
					if !benefit.HasCap {
						remaining = "uncapped"
					}
					fmt.Printf("  %-28s %s  used %s, remaining %s\n", benefit.Name, p.Key(), used, remaining)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")

	return cmd
}
