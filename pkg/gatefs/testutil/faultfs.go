// Package testutil provides test doubles for the mediated I/O layer: a
// fault-injecting filesystem for scripting descriptor-exhaustion
// sequences, and a temp-dir helper for real-filesystem tests.
package testutil

import (
	"io/fs"
	"sync"

	"github.com/gatefs/gatefs/pkg/gatefs/filesystem"
)

// FaultFS wraps a FileSystem and fails calls with scripted errors.
// PushFault queues errors for a named primitive; each call to that
// primitive pops one error until the queue is empty, after which calls
// pass through to the wrapped filesystem. Call counts are tracked per
// primitive.
type FaultFS struct {
	next filesystem.FileSystem

	mu     sync.Mutex
	faults map[string][]error
	calls  map[string]int
}

// NewFaultFS wraps next with an empty fault script.
func NewFaultFS(next filesystem.FileSystem) *FaultFS {
	return &FaultFS{
		next:   next,
		faults: make(map[string][]error),
		calls:  make(map[string]int),
	}
}

// PushFault queues errs for the named primitive ("readfile",
// "writefile", "stat", ...).
func (f *FaultFS) PushFault(op string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults[op] = append(f.faults[op], errs...)
}

// Calls returns how many times the named primitive was invoked.
func (f *FaultFS) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultFS) step(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	queue := f.faults[op]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	f.faults[op] = queue[1:]
	return err
}

// Open implements filesystem.ReadFS.
func (f *FaultFS) Open(name string) (fs.File, error) {
	if err := f.step("open"); err != nil {
		return nil, err
	}
	return f.next.Open(name)
}

// ReadFile implements filesystem.ReadFS.
func (f *FaultFS) ReadFile(name string) ([]byte, error) {
	if err := f.step("readfile"); err != nil {
		return nil, err
	}
	return f.next.ReadFile(name)
}

// ReadDir implements filesystem.ReadFS.
func (f *FaultFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := f.step("readdir"); err != nil {
		return nil, err
	}
	return f.next.ReadDir(name)
}

// Stat implements filesystem.ReadFS.
func (f *FaultFS) Stat(name string) (fs.FileInfo, error) {
	if err := f.step("stat"); err != nil {
		return nil, err
	}
	return f.next.Stat(name)
}

// Lstat implements filesystem.ReadFS.
func (f *FaultFS) Lstat(name string) (fs.FileInfo, error) {
	if err := f.step("lstat"); err != nil {
		return nil, err
	}
	return f.next.Lstat(name)
}

// WriteFile implements filesystem.WriteFS.
func (f *FaultFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := f.step("writefile"); err != nil {
		return err
	}
	return f.next.WriteFile(name, data, perm)
}

// AppendFile implements filesystem.WriteFS.
func (f *FaultFS) AppendFile(name string, data []byte, perm fs.FileMode) error {
	if err := f.step("appendfile"); err != nil {
		return err
	}
	return f.next.AppendFile(name, data, perm)
}

// MkdirAll implements filesystem.WriteFS.
func (f *FaultFS) MkdirAll(path string, perm fs.FileMode) error {
	if err := f.step("mkdirall"); err != nil {
		return err
	}
	return f.next.MkdirAll(path, perm)
}

// Remove implements filesystem.WriteFS.
func (f *FaultFS) Remove(name string) error {
	if err := f.step("remove"); err != nil {
		return err
	}
	return f.next.Remove(name)
}

// RemoveAll implements filesystem.WriteFS.
func (f *FaultFS) RemoveAll(name string) error {
	if err := f.step("removeall"); err != nil {
		return err
	}
	return f.next.RemoveAll(name)
}

// Rename implements filesystem.WriteFS.
func (f *FaultFS) Rename(oldpath, newpath string) error {
	if err := f.step("rename"); err != nil {
		return err
	}
	return f.next.Rename(oldpath, newpath)
}

// CopyFile implements filesystem.WriteFS.
func (f *FaultFS) CopyFile(oldpath, newpath string) error {
	if err := f.step("copyfile"); err != nil {
		return err
	}
	return f.next.CopyFile(oldpath, newpath)
}
