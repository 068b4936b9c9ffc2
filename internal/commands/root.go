package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perkwise-dev/perkwise/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "perkwise",
		Short:   "Card benefit matching and usage tracking",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newLinkCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newStatusCommand())

	return rootCmd
}
