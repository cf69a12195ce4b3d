package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/raoulx24/btrfs-autosnap/internal/config"
	"github.com/raoulx24/btrfs-autosnap/internal/logging"
)

var (
	configPath string
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:           "btrfs-autosnap",
	Short:         "Periodic btrfs snapshots with keep-newest-N retention",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/btrfs-autosnap/config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "log mutations without performing them")

	rootCmd.AddCommand(snapshotCmd, listCmd, daemonCmd)
}

// loadConfig reads the config file (optional), applies global flags and
// builds the logger.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if dryRun {
		cfg.DryRun = true
	}
	return cfg, logging.New(cfg.Logging.Level, cfg.Logging.Format), nil
}

func main() {
	// .env values feed the $(VAR) placeholders in the config file
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "btrfs-autosnap: %v\n", err)
		os.Exit(1)
	}
}
