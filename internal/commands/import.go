package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/perkwise-dev/perkwise/internal/importer"
	"github.com/perkwise-dev/perkwise/internal/ledger"
	"github.com/perkwise-dev/perkwise/internal/match"
	"github.com/perkwise-dev/perkwise/internal/scan"
)

func newImportCommand() *cobra.Command {
	var dir string
	var accountID string
	var format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import card CSV exports and match new transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(dir)
			if err != nil {
				return err
			}
			defer e.close()

			if format == "" {
				format = e.cfg.Import.Format
			}

			selector := match.NewSelector(e.store, e.log)
			recorder := ledger.NewService(e.store, e.store, e.log)
			trigger := scan.NewTrigger(selector, recorder)
			imp := importer.NewImporter(importer.DefaultRegistry(), e.store, trigger, e.log)

			importDir := filepath.Join(e.root, e.cfg.Import.Dir)
			summary, err := imp.ImportDir(cmd.Context(), importDir, format, accountID)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d transactions from %d files (%d matched)\n",
				summary.Imported, summary.Files, summary.Matched)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().StringVar(&accountID, "account", "", "account the CSVs belong to (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&format, "format", "", "CSV format (defaults to config)")

	return cmd
}
