// Package retention prunes old snapshots, keeping the newest N per rotation.
package retention

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/raoulx24/btrfs-autosnap/internal/btrfs"
	"github.com/raoulx24/btrfs-autosnap/internal/config"
	"github.com/raoulx24/btrfs-autosnap/internal/fs"
	"github.com/raoulx24/btrfs-autosnap/internal/logging"
	"github.com/raoulx24/btrfs-autosnap/internal/mounts"
	"github.com/raoulx24/btrfs-autosnap/internal/snapshot"
)

// Engine applies the keep-newest-N policy for one rotation.
type Engine struct {
	cfg    config.SnapshotConfig
	dryRun bool
	table  mounts.Table
	tool   btrfs.Tool
	fs     fs.FS
	log    logging.Logger
}

func New(cfg *config.Config, table mounts.Table, tool btrfs.Tool, filesystem fs.FS, log logging.Logger) *Engine {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Engine{
		cfg:    cfg.Snapshot,
		dryRun: cfg.DryRun,
		table:  table,
		tool:   tool,
		fs:     filesystem,
		log:    log,
	}
}

// Apply deletes all but the newest Keep snapshots of this rotation under the
// working path. A zero Keep disables pruning entirely. Individual deletion
// failures are logged and counted, remaining deletions still run.
func (e *Engine) Apply(ctx context.Context, workingPath string) error {
	if e.cfg.Keep <= 0 {
		return nil
	}

	records, err := e.tool.ListSnapshots(ctx, workingPath)
	if err != nil {
		return fmt.Errorf("listing snapshots under %s: %w", workingPath, err)
	}

	mountpoint, ok := e.table.MountOf(workingPath)
	if !ok {
		return fmt.Errorf("no btrfs mount contains %s", workingPath)
	}

	matching := e.match(mountpoint, workingPath, records)
	if len(matching) <= e.cfg.Keep {
		return nil
	}

	failed := 0
	for _, snap := range matching[e.cfg.Keep:] {
		if e.dryRun {
			e.log.Info("dry-run: would delete snapshot", "path", snap)
			continue
		}

		// already gone: lost a race against a manual cleanup, fine
		if _, err := e.fs.Stat(snap); errors.Is(err, iofs.ErrNotExist) {
			continue
		}

		if err := e.tool.Delete(ctx, snap); err != nil {
			e.log.Error("deleting snapshot failed", "path", snap, "error", err)
			failed++
			continue
		}
		e.log.Info("snapshot deleted", "path", snap)
	}

	if failed > 0 {
		return fmt.Errorf("%d snapshot deletion(s) failed under %s", failed, workingPath)
	}
	return nil
}

// match resolves the tool's tree-relative records to absolute paths and
// keeps the ones belonging to this rotation: residing in the working path's
// snapshot directory with a basename matching the prefix/label pattern.
// The result is ordered newest generation first.
func (e *Engine) match(mountpoint, workingPath string, records []btrfs.SnapshotRecord) []string {
	// the tool already orders by generation, but the policy depends on it
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Generation > records[j].Generation
	})

	dir := snapshot.Dir(workingPath, e.cfg.Directory)
	pattern := snapshot.Pattern(e.cfg.Prefix, e.cfg.Label)

	return lo.FilterMap(records, func(r btrfs.SnapshotRecord, _ int) (string, bool) {
		abs := e.table.Resolve(mountpoint, r.Path)
		return abs, strings.HasPrefix(abs, dir+"/") && pattern.MatchString(path.Base(abs))
	})
}
