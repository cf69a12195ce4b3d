// Package btrfs wraps the btrfs userland tool behind a narrow interface so
// the discovery and retention logic can be tested without a real filesystem.
package btrfs

import "context"

// SubvolumeInfo is the metadata subset relevant for classification.
// Snapshots carry a parent UUID pointing at their source and are
// conventionally read-only; freshly created subvolumes have neither.
type SubvolumeInfo struct {
	ParentUUID string
	ReadOnly   bool
}

func (i SubvolumeInfo) HasParent() bool {
	return i.ParentUUID != ""
}

// SnapshotRecord is one snapshot as reported by the tool. Path is relative
// to the subvolume tree root, not the filesystem. Generation is the
// filesystem's monotonically increasing counter and is the recency ordering
// key: wall clocks may jump (DST, NTP), generations never do.
type SnapshotRecord struct {
	Path       string
	Generation uint64
}

// Tool is the filesystem tool collaborator. All queries and mutations the
// pipeline performs go through it.
type Tool interface {
	// ListSubvolumes returns the tree-relative paths of all subvolumes
	// nested under path.
	ListSubvolumes(ctx context.Context, path string) ([]string, error)

	// Show returns classification metadata for the subvolume at path.
	Show(ctx context.Context, path string) (SubvolumeInfo, error)

	// ListSnapshots returns all snapshots under path's tree, newest
	// generation first.
	ListSnapshots(ctx context.Context, path string) ([]SnapshotRecord, error)

	// Snapshot creates a snapshot of src at dst, read-only unless writable.
	Snapshot(ctx context.Context, src, dst string, writable bool) error

	// Delete removes the subvolume at path.
	Delete(ctx context.Context, path string) error
}
