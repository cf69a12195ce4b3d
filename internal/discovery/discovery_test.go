package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/btrfs-autosnap/internal/btrfs"
	"github.com/raoulx24/btrfs-autosnap/internal/logging"
	"github.com/raoulx24/btrfs-autosnap/internal/mounts"
)

func discover(t *testing.T, table mounts.Table, tool btrfs.Tool) *Set {
	t.Helper()
	live, err := New(table, tool, logging.Nop()).Discover(context.Background())
	require.NoError(t, err)
	return live
}

func TestDiscoverEmptyMountTable(t *testing.T) {
	live := discover(t, mounts.Table{}, btrfs.NewMockTool())
	assert.Zero(t, live.Len())
}

func TestDiscoverClassification(t *testing.T) {
	tests := []struct {
		name string
		info btrfs.SubvolumeInfo
		live bool
	}{
		{"no parent, writable", btrfs.SubvolumeInfo{}, true},
		{"no parent, read-only", btrfs.SubvolumeInfo{ReadOnly: true}, false},
		{"parent, read-only", btrfs.SubvolumeInfo{ParentUUID: "u", ReadOnly: true}, false},
		{"parent, writable", btrfs.SubvolumeInfo{ParentUUID: "u"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := btrfs.NewMockTool()
			tool.Subvolumes["/"] = []string{"data"}
			tool.Infos["/data"] = tt.info

			live := discover(t, mounts.Table{"/": ""}, tool)
			assert.Equal(t, tt.live, live.Contains("/data"))
		})
	}
}

func TestDiscoverMountpointsAreAlwaysLive(t *testing.T) {
	live := discover(t, mounts.Table{"/": "", "/home": "home"}, btrfs.NewMockTool())
	assert.ElementsMatch(t, []string{"/", "/home"}, live.Paths())
}

func TestDiscoverMountpointNotDuplicated(t *testing.T) {
	// /home is reachable as a nested subvolume of / and as its own
	// mountpoint; it must appear exactly once
	tool := btrfs.NewMockTool()
	tool.Subvolumes["/"] = []string{"home"}
	tool.Infos["/home"] = btrfs.SubvolumeInfo{}

	live := discover(t, mounts.Table{"/": "", "/home": "home"}, tool)
	assert.Equal(t, 2, live.Len())
	assert.True(t, live.Contains("/home"))
}

func TestDiscoverSkipsBlankLines(t *testing.T) {
	tool := btrfs.NewMockTool()
	tool.Subvolumes["/"] = []string{"", "  ", "data"}
	tool.Infos["/data"] = btrfs.SubvolumeInfo{}

	live := discover(t, mounts.Table{"/": ""}, tool)
	assert.Equal(t, []string{"/", "/data"}, live.Paths())
}

func TestDiscoverSkipsUnreadableCandidates(t *testing.T) {
	tool := btrfs.NewMockTool()
	tool.Subvolumes["/"] = []string{"gone"} // no Show metadata seeded

	live := discover(t, mounts.Table{"/": ""}, tool)
	assert.False(t, live.Contains("/gone"))
}

func TestValidate(t *testing.T) {
	live := newSet()
	live.add("/")
	live.add("/data")

	assert.NoError(t, Validate([]string{"/data", "/"}, live))

	err := Validate([]string{"//", "/data", "/nope"}, live)
	var nse *NotSubvolumeError
	require.ErrorAs(t, err, &nse)
	// all offenders reported, not just the first
	assert.Equal(t, []string{"//", "/nope"}, nse.Paths)
}
