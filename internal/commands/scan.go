package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/perkwise-dev/perkwise/internal/ledger"
	"github.com/perkwise-dev/perkwise/internal/match"
	"github.com/perkwise-dev/perkwise/internal/runlog"
	"github.com/perkwise-dev/perkwise/internal/scan"
)

func newScanCommand() *cobra.Command {
	var dir string
	var accountIDs []string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Backfill-match historical transactions against card benefits",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(dir)
			if err != nil {
				return err
			}
			defer e.close()

			selector := match.NewSelector(e.store, e.log)
			recorder := ledger.NewService(e.store, e.store, e.log)
			trigger := scan.NewTrigger(selector, recorder)
			scanner := scan.NewScanner(e.store, trigger, e.log, e.cfg.Scan.BatchLimit)

			result, err := scanner.Scan(cmd.Context(), e.cfg.User.ID, accountIDs)
			if err != nil {
				return err
			}

			entry := runlog.Entry{
				Timestamp: time.Now().UTC(),
				UserID:    e.cfg.User.ID,
				Matched:   result.Matched,
				Checked:   result.Checked,
				Note:      "cli scan",
			}
			if err := runlog.Append(e.root, []runlog.Entry{entry}); err != nil {
				return err
			}

			fmt.Printf("Scanned %d transactions, matched %d\n", result.Checked, result.Matched)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().StringSliceVar(&accountIDs, "account", nil, "limit the scan to specific accounts")

	return cmd
}
