package fs

import (
	"io/fs"
	"sync"
	"time"
)

// MockFS is an in-memory FS for tests.
type MockFS struct {
	mu    sync.Mutex
	paths map[string]bool // path -> is directory
}

func NewMock(existing ...string) *MockFS {
	m := &MockFS{paths: map[string]bool{}}
	for _, p := range existing {
		m.paths[p] = false
	}
	return m
}

func (m *MockFS) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[path] = true
}

func (m *MockFS) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.paths, path)
}

func (m *MockFS) Stat(path string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir, ok := m.paths[path]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return mockInfo{name: path, dir: dir}, nil
}

func (m *MockFS) MkdirAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[path] = true
	return nil
}

type mockInfo struct {
	name string
	dir  bool
}

func (i mockInfo) Name() string       { return i.name }
func (i mockInfo) Size() int64        { return 0 }
func (i mockInfo) Mode() fs.FileMode  { return 0o755 }
func (i mockInfo) ModTime() time.Time { return time.Time{} }
func (i mockInfo) IsDir() bool        { return i.dir }
func (i mockInfo) Sys() any           { return nil }
