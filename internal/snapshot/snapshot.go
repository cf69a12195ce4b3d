// Package snapshot computes snapshot names and creates snapshots.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/raoulx24/btrfs-autosnap/internal/btrfs"
	"github.com/raoulx24/btrfs-autosnap/internal/config"
	"github.com/raoulx24/btrfs-autosnap/internal/fs"
	"github.com/raoulx24/btrfs-autosnap/internal/logging"
)

// Creator takes one snapshot per working path.
type Creator struct {
	cfg    config.SnapshotConfig
	dryRun bool
	tool   btrfs.Tool
	fs     fs.FS
	log    logging.Logger
	now    func() time.Time
}

func NewCreator(cfg *config.Config, tool btrfs.Tool, filesystem fs.FS, log logging.Logger) *Creator {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Creator{
		cfg:    cfg.Snapshot,
		dryRun: cfg.DryRun,
		tool:   tool,
		fs:     filesystem,
		log:    log,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (c *Creator) WithClock(now func() time.Time) *Creator {
	c.now = now
	return c
}

// Create snapshots the subvolume at path and returns the snapshot path.
//
// Any pre-existing subvolume with the exact same name is deleted first, so
// two invocations within the same minute (or across a DST rollback) end with
// exactly one snapshot instead of a failing run. The delete usually has
// nothing to remove, its error is ignored.
func (c *Creator) Create(ctx context.Context, path string) (string, error) {
	dir := Dir(path, c.cfg.Directory)
	dst := dir + "/" + Name(c.cfg.Prefix, c.cfg.Label, c.now())

	if c.dryRun {
		c.log.Info("dry-run: would snapshot", "src", path, "dst", dst)
		return dst, nil
	}

	if err := c.fs.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("creating snapshot directory %s: %w", dir, err)
	}

	_ = c.tool.Delete(ctx, dst)

	if err := c.tool.Snapshot(ctx, path, dst, c.cfg.Writable); err != nil {
		return "", fmt.Errorf("creating snapshot %s: %w", dst, err)
	}

	c.log.Info("snapshot created", "src", path, "dst", dst)
	return dst, nil
}
