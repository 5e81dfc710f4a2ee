package types

import (
	"io/fs"
)

// FS is the filesystem interface required for tagfarm operations.
// The planner and scanner only use the read side; the executor is the
// only component that calls the mutating methods.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error
}
