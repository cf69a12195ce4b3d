package main

import (
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/raoulx24/btrfs-autosnap/internal/btrfs"
	"github.com/raoulx24/btrfs-autosnap/internal/snapshot"
	"github.com/raoulx24/btrfs-autosnap/internal/worker"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show discovered live subvolumes and their snapshot counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		tool := btrfs.NewExecTool(log)
		table, live, err := worker.New(cfg, tool, nil, log).Discover(cmd.Context())
		if err != nil {
			return err
		}

		tbl := tablewriter.NewWriter(os.Stdout)
		tbl.SetHeader([]string{"Subvolume", "Snapshots", "Newest"})
		tbl.SetBorder(false)

		for _, p := range live.Paths() {
			records, err := tool.ListSnapshots(cmd.Context(), p)
			if err != nil {
				return err
			}

			mountpoint, ok := table.MountOf(p)
			if !ok {
				continue
			}

			dir := snapshot.Dir(p, cfg.Snapshot.Directory)
			count := 0
			newest := ""
			for _, r := range records {
				abs := table.Resolve(mountpoint, r.Path)
				if !strings.HasPrefix(abs, dir+"/") {
					continue
				}
				count++
				if newest == "" {
					newest = path.Base(abs)
				}
			}

			tbl.Append([]string{p, strconv.Itoa(count), newest})
		}

		tbl.Render()
		return nil
	},
}
