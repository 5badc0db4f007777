package filesystem

import (
	"io/fs"
)

// ReadFS groups the read-side primitives the mediator executes.
type ReadFS interface {
	Open(name string) (fs.File, error)
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
}

// WriteFS groups the write-side primitives.
type WriteFS interface {
	WriteFile(name string, data []byte, perm fs.FileMode) error
	AppendFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
	RemoveAll(name string) error
	Rename(oldpath, newpath string) error
	CopyFile(oldpath, newpath string) error
}

// FileSystem combines read and write operations. All names are
// root-relative slash paths as produced by the access gate.
type FileSystem interface {
	ReadFS
	WriteFS
}
