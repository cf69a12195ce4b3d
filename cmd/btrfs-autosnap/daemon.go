package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raoulx24/btrfs-autosnap/internal/btrfs"
	"github.com/raoulx24/btrfs-autosnap/internal/config"
	"github.com/raoulx24/btrfs-autosnap/internal/daemon"
	"github.com/raoulx24/btrfs-autosnap/internal/fs"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run configured rotations on their cron schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		d := daemon.New(cfg, btrfs.NewExecTool(log), fs.New(), log)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// graceful shutdown
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			log.Info("shutting down")
			cancel()
		}()

		// hot reload on SIGHUP
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGHUP)

			for range sigCh {
				newCfg, err := config.Load(configPath)
				if err != nil {
					log.Error("config reload failed", "error", err)
					continue
				}
				if err := newCfg.Validate(); err != nil {
					log.Error("config reload rejected", "error", err)
					continue
				}
				if dryRun {
					newCfg.DryRun = true
				}
				d.Reload(newCfg)
			}
		}()

		return d.Run(ctx)
	},
}
