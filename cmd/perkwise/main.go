package main

import (
	"os"

	"github.com/perkwise-dev/perkwise/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
