// Package fs defines the local filesystem abstraction used by btrfs-autosnap.
// Subvolume mutations go through the btrfs tool instead; this interface only
// covers the plain-directory operations around them.
package fs

import "io/fs"

type FS interface {
	// Stat reports metadata for path; the error satisfies
	// errors.Is(err, fs.ErrNotExist) when the path is gone.
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string) error
}
