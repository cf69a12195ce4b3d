// Package mounts reads the system mount table and owns the path arithmetic
// between mountpoints and btrfs tree-relative subvolume paths.
package mounts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/procfs"
)

// ErrUnreadableMountTable is returned when the mount table itself cannot be
// read. An empty table is not an error.
var ErrUnreadableMountTable = fmt.Errorf("mount table unreadable")

// Table maps a mountpoint to the tree-relative path of the subvolume mounted
// there ("" means the filesystem's own root, i.e. subvol=/).
type Table map[string]string

// Load reads the process mount table and keeps the btrfs entries.
func Load() (Table, error) {
	infos, err := procfs.GetMounts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableMountTable, err)
	}
	return FromMountInfo(infos), nil
}

// FromMountInfo extracts (mountpoint, subvolume root) pairs from mount table
// entries. Only fstype btrfs is considered; the subvolume root comes from the
// subvol= option, without its leading slash so that substitution against a
// mountpoint yields a clean absolute path.
func FromMountInfo(infos []*procfs.MountInfo) Table {
	table := Table{}
	for _, m := range infos {
		if m.FSType != "btrfs" {
			continue
		}
		table[unescape(m.MountPoint)] = strings.TrimPrefix(subvolOption(m.SuperOptions), "/")
	}
	return table
}

func subvolOption(superOptions map[string]string) string {
	if v, ok := superOptions["subvol"]; ok {
		return v
	}
	return ""
}

// the kernel escapes whitespace and backslashes in mount paths as \ooo
// octal sequences
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if code, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(code))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Mountpoints returns the mountpoints in deterministic order.
func (t Table) Mountpoints() []string {
	points := make([]string, 0, len(t))
	for mp := range t {
		points = append(points, mp)
	}
	sort.Strings(points)
	return points
}

func (t Table) Contains(path string) bool {
	_, ok := t[path]
	return ok
}

// Resolve maps a tree-relative subvolume path (as printed by the btrfs tool)
// to an absolute filesystem path, by substituting the mountpoint's own
// subvolume root for the leading part of rel.
func (t Table) Resolve(mountpoint, rel string) string {
	if root := t[mountpoint]; root != "" {
		if rel == root {
			rel = ""
		} else if v, ok := strings.CutPrefix(rel, root+"/"); ok {
			rel = v
		}
	}

	abs := mountpoint + "/" + rel
	abs = strings.ReplaceAll(abs, "//", "/")
	if abs != "/" {
		abs = strings.TrimSuffix(abs, "/")
	}
	return abs
}

// MountOf returns the mountpoint whose filesystem contains path, choosing the
// longest matching mountpoint when mounts are nested.
func (t Table) MountOf(path string) (string, bool) {
	best := ""
	found := false
	for mp := range t {
		if path != mp && !strings.HasPrefix(path, strings.TrimSuffix(mp, "/")+"/") {
			continue
		}
		if !found || len(mp) > len(best) {
			best = mp
			found = true
		}
	}
	return best, found
}
