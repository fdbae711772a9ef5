// Package main provides the entry point for the skills dossier API server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/skills-dossier/internal/config"
	"github.com/jonathan/skills-dossier/internal/logger"
)

// newRootCmd builds the command tree. Tests build a fresh tree per case.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "dossier",
		Short:         "Skills dossier API server and CV import tool",
		Long:          "Skills dossier manages consultant profiles and extracts structured candidate records from CV documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "JSON config file merged over the environment")

	load := func() (*config.AppConfig, error) {
		return loadConfig(configPath)
	}
	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newSetRoleCmd(load),
		newImportCVCmd(load),
	)
	return root
}

// loadConfig reads the environment and, when path is set, merges the file
// over it. CLI commands log to stderr so stdout stays parseable.
func loadConfig(path string) (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if path != "" {
		file, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		merged := file.MergeWithDefaults(*cfg)
		if err := merged.Validate(); err != nil {
			return nil, err
		}
		cfg = &merged
	}

	logger.InitWithWriter(cfg.Logger(), os.Stderr)
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
