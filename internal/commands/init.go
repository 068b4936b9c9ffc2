package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/perkwise-dev/perkwise/internal/cards"
	"github.com/perkwise-dev/perkwise/internal/config"
	"github.com/perkwise-dev/perkwise/internal/store"
)

func newInitCommand() *cobra.Command {
	var userID string
	var userName string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Perkwise project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), absDir, userID, userName)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user identifier (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&userName, "name", "", "display name")

	return cmd
}

func runInit(ctx context.Context, dir, userID, userName string) error {
	// Create directory structure.
	dirs := []string{
		"data",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write perkwise.yaml.
	cfg := config.Default(userID, userName)
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Open the store and seed the default card catalog.
	st, err := store.New(filepath.Join(dir, cfg.Store.Path))
	if err != nil {
		return err
	}
	defer st.Close()

	for _, product := range cards.DefaultCatalog() {
		if err := st.SaveProduct(ctx, product); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}

	// Write import/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Printf("Initialized Perkwise project at %s\n", dir)
	return nil
}
