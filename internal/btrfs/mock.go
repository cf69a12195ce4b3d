package btrfs

import (
	"context"
	"fmt"
	"sync"
)

// MockTool is an in-memory Tool for tests. Query results are seeded through
// the exported maps, mutations are recorded.
type MockTool struct {
	mu sync.Mutex

	Subvolumes map[string][]string         // mountpoint -> tree-relative paths
	Infos      map[string]SubvolumeInfo    // absolute path -> metadata
	Snapshots  map[string][]SnapshotRecord // working path -> records

	SnapshotErr map[string]error // dst -> forced create failure
	DeleteErr   map[string]error // path -> forced delete failure

	CreatedSnapshots []CreatedSnapshot
	Deleted          []string
}

type CreatedSnapshot struct {
	Src      string
	Dst      string
	Writable bool
}

func NewMockTool() *MockTool {
	return &MockTool{
		Subvolumes:  map[string][]string{},
		Infos:       map[string]SubvolumeInfo{},
		Snapshots:   map[string][]SnapshotRecord{},
		SnapshotErr: map[string]error{},
		DeleteErr:   map[string]error{},
	}
}

func (m *MockTool) ListSubvolumes(ctx context.Context, path string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Subvolumes[path]...), nil
}

func (m *MockTool) Show(ctx context.Context, path string) (SubvolumeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.Infos[path]
	if !ok {
		return SubvolumeInfo{}, fmt.Errorf("btrfs show: no such subvolume %q", path)
	}
	return info, nil
}

func (m *MockTool) ListSnapshots(ctx context.Context, path string) ([]SnapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SnapshotRecord(nil), m.Snapshots[path]...), nil
}

func (m *MockTool) Snapshot(ctx context.Context, src, dst string, writable bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.SnapshotErr[dst]; err != nil {
		return err
	}
	m.CreatedSnapshots = append(m.CreatedSnapshots, CreatedSnapshot{Src: src, Dst: dst, Writable: writable})
	return nil
}

func (m *MockTool) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.DeleteErr[path]; err != nil {
		return err
	}
	m.Deleted = append(m.Deleted, path)
	return nil
}
