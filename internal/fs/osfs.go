package fs

import (
	"io/fs"
	"os"
)

// OSFS is the concrete implementation of FS backed by the local OS filesystem.
type OSFS struct{}

func New() *OSFS {
	return &OSFS{}
}

func (o *OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (o *OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}
