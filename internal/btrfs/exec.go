package btrfs

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/raoulx24/btrfs-autosnap/internal/logging"
)

// runner executes one btrfs invocation and returns its stdout.
type runner func(ctx context.Context, args ...string) ([]byte, error)

// ExecTool implements Tool by shelling out to the btrfs binary.
type ExecTool struct {
	log logging.Logger
	run runner
}

func NewExecTool(log logging.Logger) *ExecTool {
	return &ExecTool{log: log, run: btrfsCommand}
}

func btrfsCommand(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "btrfs", args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return out, fmt.Errorf("btrfs %s: %v: %s", args[0], err, ee.Stderr)
		}
		return out, fmt.Errorf("btrfs %s: %w", args[0], err)
	}
	return out, nil
}

func (t *ExecTool) ListSubvolumes(ctx context.Context, path string) ([]string, error) {
	t.log.Debug("btrfs subvolume list", "path", path)
	out, err := t.run(ctx, "subvolume", "list", path)
	if err != nil {
		return nil, err
	}
	return parseSubvolumeList(out)
}

func (t *ExecTool) Show(ctx context.Context, path string) (SubvolumeInfo, error) {
	t.log.Debug("btrfs subvolume show", "path", path)
	out, err := t.run(ctx, "subvolume", "show", path)
	if err != nil {
		return SubvolumeInfo{}, err
	}
	return parseShow(out), nil
}

func (t *ExecTool) ListSnapshots(ctx context.Context, path string) ([]SnapshotRecord, error) {
	t.log.Debug("btrfs subvolume list -s", "path", path)
	out, err := t.run(ctx, "subvolume", "list", "-s", "--sort=-gen", path)
	if err != nil {
		return nil, err
	}
	return parseSnapshotList(out)
}

func (t *ExecTool) Snapshot(ctx context.Context, src, dst string, writable bool) error {
	args := []string{"subvolume", "snapshot"}
	if !writable {
		args = append(args, "-r")
	}
	args = append(args, src, dst)

	t.log.Debug("btrfs subvolume snapshot", "src", src, "dst", dst, "writable", writable)
	_, err := t.run(ctx, args...)
	return err
}

func (t *ExecTool) Delete(ctx context.Context, path string) error {
	t.log.Debug("btrfs subvolume delete", "path", path)
	_, err := t.run(ctx, "subvolume", "delete", path)
	return err
}
