package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/perkwise-dev/perkwise/internal/config"
	"github.com/perkwise-dev/perkwise/internal/logger"
	"github.com/perkwise-dev/perkwise/internal/store"
)

// env bundles the project root, config, store, and logger every
// command needs.
type env struct {
	root  string
	cfg   *config.Config
	store *store.Store
	log   zerolog.Logger
}

// openEnv loads perkwise.yaml from root and opens the store.
func openEnv(root string) (*env, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(absRoot, config.FileName))
	if err != nil {
		return nil, err
	}

	st, err := store.New(filepath.Join(absRoot, cfg.Store.Path))
	if err != nil {
		return nil, err
	}

	return &env{
		root:  absRoot,
		cfg:   cfg,
		store: st,
		log:   logger.New(cfg.Log.Level),
	}, nil
}

func (e *env) close() {
	e.store.Close()
}
