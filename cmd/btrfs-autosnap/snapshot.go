package main

import (
	"github.com/spf13/cobra"

	"github.com/raoulx24/btrfs-autosnap/internal/worker"
)

var (
	flagPrefix   string
	flagLabel    string
	flagKeep     int
	flagWritable bool
	flagAll      bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [paths...]",
	Short: "Snapshot subvolumes and prune old snapshots of the same rotation",
	Long: `Snapshots the given subvolumes (or all discovered ones with --all),
then deletes all but the newest --keep snapshots carrying the same
prefix and label. Without --keep nothing is pruned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("prefix") {
			cfg.Snapshot.Prefix = flagPrefix
		}
		if cmd.Flags().Changed("label") {
			cfg.Snapshot.Label = flagLabel
		}
		if cmd.Flags().Changed("keep") {
			cfg.Snapshot.Keep = flagKeep
		}
		if cmd.Flags().Changed("writable") {
			cfg.Snapshot.Writable = flagWritable
		}
		if len(args) > 0 {
			cfg.Paths = args
			cfg.All = false
		}
		if flagAll {
			cfg.All = true
		}

		_, err = worker.New(cfg, nil, nil, log).Run(cmd.Context())
		return err
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&flagPrefix, "prefix", "", "snapshot name prefix")
	snapshotCmd.Flags().StringVar(&flagLabel, "label", "", "rotation label, e.g. hourly")
	snapshotCmd.Flags().IntVar(&flagKeep, "keep", 0, "number of newest snapshots to keep (0 = keep all)")
	snapshotCmd.Flags().BoolVar(&flagWritable, "writable", false, "create writable snapshots")
	snapshotCmd.Flags().BoolVar(&flagAll, "all", false, "snapshot every discovered subvolume")
}
