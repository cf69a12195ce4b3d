// Package daemon runs configured rotations on cron schedules.
package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/btrfs-autosnap/internal/btrfs"
	"github.com/raoulx24/btrfs-autosnap/internal/config"
	"github.com/raoulx24/btrfs-autosnap/internal/fs"
	"github.com/raoulx24/btrfs-autosnap/internal/logging"
	"github.com/raoulx24/btrfs-autosnap/internal/worker"
)

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateSpec checks a rotation's cron expression.
func ValidateSpec(spec string) (cron.Schedule, error) {
	return cronParser.Parse(spec)
}

// Daemon schedules rotation jobs and executes them sequentially. Ticks that
// fire while a run is in progress queue up; within one process, runs never
// overlap.
type Daemon struct {
	mu  sync.RWMutex
	cfg *config.Config

	tool  btrfs.Tool
	fs    fs.FS
	log   logging.Logger
	queue *worker.Queue
}

func New(cfg *config.Config, tool btrfs.Tool, filesystem fs.FS, log logging.Logger) *Daemon {
	return &Daemon{
		cfg:   cfg,
		tool:  tool,
		fs:    filesystem,
		log:   log,
		queue: worker.NewQueue(16),
	}
}

// Reload swaps in a new configuration. It affects subsequent runs; cron
// schedules stay as loaded at startup until the process restarts.
func (d *Daemon) Reload(cfg *config.Config) {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
	d.log.Info("config reloaded")
}

func (d *Daemon) config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Run blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	rotations := d.config().Daemon.Rotations
	if len(rotations) == 0 {
		return fmt.Errorf("daemon: no rotations configured")
	}

	c := cron.New(cron.WithParser(cronParser))
	for _, rot := range rotations {
		_, err := c.AddFunc(rot.Cron, func() {
			d.queue.Push(worker.Job{Rotation: rot, Fired: time.Now()})
		})
		if err != nil {
			return fmt.Errorf("daemon: rotation %q: %w", rot.Label, err)
		}
	}

	c.Start()
	defer c.Stop()
	d.log.Info("daemon started", "rotations", len(rotations))

	for {
		job, ok := d.queue.Pop(ctx)
		if !ok {
			d.log.Info("daemon stopped")
			return nil
		}

		runCfg := d.config().WithRotation(job.Rotation)
		d.log.Info("rotation fired", "label", job.Rotation.Label, "at", job.Fired)

		if _, err := worker.New(runCfg, d.tool, d.fs, d.log).Run(ctx); err != nil {
			d.log.Error("rotation run failed", "label", job.Rotation.Label, "error", err)
		}
	}
}
