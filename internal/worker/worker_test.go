package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/btrfs-autosnap/internal/btrfs"
	"github.com/raoulx24/btrfs-autosnap/internal/config"
	"github.com/raoulx24/btrfs-autosnap/internal/discovery"
	"github.com/raoulx24/btrfs-autosnap/internal/fs"
	"github.com/raoulx24/btrfs-autosnap/internal/logging"
	"github.com/raoulx24/btrfs-autosnap/internal/mounts"
)

var fixedTime = time.Date(2026, 8, 26, 5, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Snapshot.Label = "hourly"
	return cfg
}

func newTestWorker(cfg *config.Config, table mounts.Table, tool btrfs.Tool, mockFS fs.FS) *Worker {
	return New(cfg, tool, mockFS, logging.Nop()).
		WithMountTable(func() (mounts.Table, error) { return table, nil }).
		WithClock(func() time.Time { return fixedTime })
}

// full pass over a root mount with one nested data subvolume: both get a new
// snapshot, and with keep=1 the previous snapshot of each is pruned
func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.All = true
	cfg.Snapshot.Keep = 1

	table := mounts.Table{"/": ""}

	tool := btrfs.NewMockTool()
	tool.Subvolumes["/"] = []string{"data"}
	tool.Infos["/data"] = btrfs.SubvolumeInfo{}
	// as listed after the new snapshots exist: generation 2 is the one
	// being created in this run, generation 1 the previous rotation's
	tool.Snapshots["/"] = []btrfs.SnapshotRecord{
		{Path: ".btrfs/btrfs-auto-snap_hourly_2026-08-26-0500", Generation: 2},
		{Path: ".btrfs/btrfs-auto-snap_hourly_2026-08-26-0400", Generation: 1},
	}
	tool.Snapshots["/data"] = []btrfs.SnapshotRecord{
		{Path: "data/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0500", Generation: 2},
		{Path: "data/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0400", Generation: 1},
	}

	mockFS := fs.NewMock(
		"/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0500",
		"/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0400",
		"/data/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0500",
		"/data/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0400",
	)

	outcomes, err := newTestWorker(cfg, table, tool, mockFS).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, outcomes, 2)
	assert.Equal(t, "/", outcomes[0].Path)
	assert.Equal(t, "/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0500", outcomes[0].Snapshot)
	assert.Equal(t, "/data", outcomes[1].Path)
	assert.Equal(t, "/data/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0500", outcomes[1].Snapshot)

	assert.Len(t, tool.CreatedSnapshots, 2)
	// the older generation of each path was pruned
	assert.Contains(t, tool.Deleted, "/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0400")
	assert.Contains(t, tool.Deleted, "/data/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0400")
	// snapshots are read-only by default
	for _, c := range tool.CreatedSnapshots {
		assert.False(t, c.Writable)
	}
}

func TestRunRejectsInvalidPathsBeforeMutation(t *testing.T) {
	cfg := testConfig()
	cfg.Paths = []string{"//", "/"}

	tool := btrfs.NewMockTool()

	_, err := newTestWorker(cfg, mounts.Table{"/": ""}, tool, fs.NewMock()).Run(context.Background())

	var nse *discovery.NotSubvolumeError
	require.ErrorAs(t, err, &nse)
	assert.Equal(t, []string{"//"}, nse.Paths)

	assert.Empty(t, tool.CreatedSnapshots)
	assert.Empty(t, tool.Deleted)
}

func TestRunWildcardWithNothingDiscovered(t *testing.T) {
	cfg := testConfig()
	cfg.All = true

	_, err := newTestWorker(cfg, mounts.Table{}, btrfs.NewMockTool(), fs.NewMock()).Run(context.Background())

	var nse *discovery.NotSubvolumeError
	assert.ErrorAs(t, err, &nse)
}

func TestRunMountTableUnreadable(t *testing.T) {
	cfg := testConfig()
	cfg.All = true

	tool := btrfs.NewMockTool()
	w := New(cfg, tool, fs.NewMock(), logging.Nop()).
		WithMountTable(func() (mounts.Table, error) {
			return nil, mounts.ErrUnreadableMountTable
		})

	_, err := w.Run(context.Background())
	assert.ErrorIs(t, err, mounts.ErrUnreadableMountTable)
	assert.Empty(t, tool.CreatedSnapshots)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Snapshot.Keep = -1
	cfg.All = true

	_, err := newTestWorker(cfg, mounts.Table{"/": ""}, btrfs.NewMockTool(), fs.NewMock()).Run(context.Background())

	var ce *config.ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestRunPerPathFailureIsolation(t *testing.T) {
	cfg := testConfig()
	cfg.Paths = []string{"/", "/home"}

	table := mounts.Table{"/": "", "/home": "home"}

	tool := btrfs.NewMockTool()
	tool.SnapshotErr["/.btrfs/btrfs-auto-snap_hourly_2026-08-26-0500"] = errors.New("read-only filesystem")

	outcomes, err := newTestWorker(cfg, table, tool, fs.NewMock()).Run(context.Background())

	// the run reports failure, but the second path was still processed
	require.Error(t, err)
	require.Len(t, outcomes, 2)
	assert.Error(t, outcomes[0].Err)
	assert.NoError(t, outcomes[1].Err)
	require.Len(t, tool.CreatedSnapshots, 1)
	assert.Equal(t, "/home", tool.CreatedSnapshots[0].Src)
}
