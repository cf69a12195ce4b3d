// Package discovery enumerates live btrfs subvolumes and validates requested
// paths against them.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/raoulx24/btrfs-autosnap/internal/btrfs"
	"github.com/raoulx24/btrfs-autosnap/internal/logging"
	"github.com/raoulx24/btrfs-autosnap/internal/mounts"
)

// Set is an ordered set of live subvolume paths.
type Set struct {
	paths []string
	index map[string]struct{}
}

func newSet() *Set {
	return &Set{index: map[string]struct{}{}}
}

func (s *Set) add(path string) {
	if _, ok := s.index[path]; ok {
		return
	}
	s.index[path] = struct{}{}
	s.paths = append(s.paths, path)
}

func (s *Set) Contains(path string) bool {
	_, ok := s.index[path]
	return ok
}

// Paths returns the live subvolumes in discovery order.
func (s *Set) Paths() []string {
	return append([]string(nil), s.paths...)
}

func (s *Set) Len() int {
	return len(s.paths)
}

// Discoverer builds the live subvolume set from the mount table and the
// btrfs tool.
type Discoverer struct {
	table mounts.Table
	tool  btrfs.Tool
	log   logging.Logger
}

func New(table mounts.Table, tool btrfs.Tool, log logging.Logger) *Discoverer {
	return &Discoverer{table: table, tool: tool, log: log}
}

// Discover enumerates every btrfs mountpoint. Mountpoints themselves are
// always subvolumes. Nested candidates are classified live when they have no
// parent UUID and are not read-only: snapshots always carry a parent UUID
// (even writable ones), and the read-only check is an extra safety net on
// top. This is a heuristic; a deliberately read-only data subvolume will be
// treated as a snapshot.
func (d *Discoverer) Discover(ctx context.Context) (*Set, error) {
	live := newSet()

	for _, mountpoint := range d.table.Mountpoints() {
		live.add(mountpoint)

		rels, err := d.tool.ListSubvolumes(ctx, mountpoint)
		if err != nil {
			return nil, fmt.Errorf("listing subvolumes under %s: %w", mountpoint, err)
		}

		for _, rel := range rels {
			rel = strings.TrimSpace(rel)
			if rel == "" {
				// a blank line from the tool is not the filesystem root
				continue
			}

			abs := d.table.Resolve(mountpoint, rel)
			if d.table.Contains(abs) {
				// processed independently as its own mountpoint
				continue
			}

			info, err := d.tool.Show(ctx, abs)
			if err != nil {
				d.log.Info("skipping unreadable subvolume", "path", abs, "error", err)
				continue
			}

			if !info.HasParent() && !info.ReadOnly {
				live.add(abs)
			}
		}
	}

	return live, nil
}

// NotSubvolumeError reports requested paths that are not live subvolumes.
// All offenders are collected before failing.
type NotSubvolumeError struct {
	Paths []string
}

func (e *NotSubvolumeError) Error() string {
	return fmt.Sprintf("not a btrfs subvolume: %s", strings.Join(e.Paths, ", "))
}

// Validate checks every requested path verbatim against the live set. Any
// miss is fatal: no snapshot is taken unless all requested paths are valid.
func Validate(requested []string, live *Set) error {
	var invalid []string
	for _, p := range requested {
		if !live.Contains(p) {
			invalid = append(invalid, p)
		}
	}
	if len(invalid) > 0 {
		return &NotSubvolumeError{Paths: invalid}
	}
	return nil
}
