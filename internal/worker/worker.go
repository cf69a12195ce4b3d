// Package worker runs the snapshot pipeline: mount table, discovery, path
// validation, snapshot creation and retention pruning.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/raoulx24/btrfs-autosnap/internal/btrfs"
	"github.com/raoulx24/btrfs-autosnap/internal/config"
	"github.com/raoulx24/btrfs-autosnap/internal/discovery"
	"github.com/raoulx24/btrfs-autosnap/internal/fs"
	"github.com/raoulx24/btrfs-autosnap/internal/logging"
	"github.com/raoulx24/btrfs-autosnap/internal/mounts"
	"github.com/raoulx24/btrfs-autosnap/internal/retention"
	"github.com/raoulx24/btrfs-autosnap/internal/snapshot"
)

// Outcome is the per-path result of one run.
type Outcome struct {
	Path     string
	Snapshot string // created snapshot path, empty on failure
	Err      error
}

// Worker executes one full pipeline pass. It holds no state across runs.
type Worker struct {
	cfg  *config.Config
	tool btrfs.Tool
	fs   fs.FS
	log  logging.Logger

	mountTable func() (mounts.Table, error)
	clock      func() time.Time
}

// New creates a worker. Nil tool and filesystem select the real btrfs binary
// and the local OS filesystem.
func New(cfg *config.Config, tool btrfs.Tool, filesystem fs.FS, log logging.Logger) *Worker {
	if tool == nil {
		tool = btrfs.NewExecTool(log)
	}
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Worker{
		cfg:        cfg,
		tool:       tool,
		fs:         filesystem,
		log:        log,
		mountTable: mounts.Load,
		clock:      time.Now,
	}
}

// WithMountTable overrides where the mount table comes from. Used by tests.
func (w *Worker) WithMountTable(load func() (mounts.Table, error)) *Worker {
	w.mountTable = load
	return w
}

// WithClock overrides the time source. Used by tests.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.clock = now
	return w
}

// Discover loads the mount table and enumerates live subvolumes.
func (w *Worker) Discover(ctx context.Context) (mounts.Table, *discovery.Set, error) {
	table, err := w.mountTable()
	if err != nil {
		return nil, nil, err
	}

	live, err := discovery.New(table, w.tool, w.log).Discover(ctx)
	if err != nil {
		return nil, nil, err
	}
	return table, live, nil
}

// Run executes the pipeline once. Discovery and validation problems are
// fatal and abort before any mutation. Per-path create/prune failures are
// isolated: the remaining paths are still processed and the aggregate is
// reported through the returned error.
func (w *Worker) Run(ctx context.Context) ([]Outcome, error) {
	if err := w.cfg.Validate(); err != nil {
		return nil, err
	}

	table, live, err := w.Discover(ctx)
	if err != nil {
		return nil, err
	}

	working := w.cfg.Paths
	if w.cfg.All {
		working = live.Paths()
	}
	if err := discovery.Validate(working, live); err != nil {
		return nil, err
	}
	if len(working) == 0 {
		return nil, &discovery.NotSubvolumeError{Paths: []string{"(none discovered)"}}
	}

	creator := snapshot.NewCreator(w.cfg, w.tool, w.fs, w.log).WithClock(w.clock)
	pruner := retention.New(w.cfg, table, w.tool, w.fs, w.log)

	outcomes := make([]Outcome, 0, len(working))
	failed := 0
	for _, p := range working {
		created, err := creator.Create(ctx, p)
		if err != nil {
			w.log.Error("snapshot failed", "path", p, "error", err)
			outcomes = append(outcomes, Outcome{Path: p, Err: err})
			failed++
			continue
		}

		// do not prune a path whose new snapshot did not materialize
		if err := pruner.Apply(ctx, p); err != nil {
			w.log.Error("retention failed", "path", p, "error", err)
			outcomes = append(outcomes, Outcome{Path: p, Snapshot: created, Err: err})
			failed++
			continue
		}

		outcomes = append(outcomes, Outcome{Path: p, Snapshot: created})
	}

	if failed > 0 {
		return outcomes, fmt.Errorf("%d of %d path(s) failed", failed, len(working))
	}
	return outcomes, nil
}
