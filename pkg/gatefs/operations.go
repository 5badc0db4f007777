package gatefs

import (
	"context"
	"errors"
	"io/fs"
)

// Every I/O method below follows the same shape: resolve the path(s)
// through the gate first (a rejection aborts before a concurrency slot
// is consumed), then run the primitive inside an admitted slot under
// the retry policy. Results and errors keep the shape of the underlying
// os package call.

// Exists reports whether name exists inside the root. A missing entry
// is not an error.
func (m *Mediator) Exists(ctx context.Context, name string) (bool, error) {
	p, err := m.gate.Resolve(name)
	if err != nil {
		return false, err
	}
	var exists bool
	err = m.throttle.Do(ctx, "exists", func() error {
		_, statErr := m.fsys.Stat(p)
		if statErr == nil {
			exists = true
			return nil
		}
		if errors.Is(statErr, fs.ErrNotExist) {
			return nil
		}
		return statErr
	})
	return exists, err
}

// ReadFile reads the named file and returns its contents.
func (m *Mediator) ReadFile(ctx context.Context, name string) ([]byte, error) {
	p, err := m.gate.Resolve(name)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = m.throttle.Do(ctx, "readfile", func() error {
		var opErr error
		data, opErr = m.fsys.ReadFile(p)
		return opErr
	})
	return data, err
}

// WriteFile writes data to the named file, creating it if necessary.
func (m *Mediator) WriteFile(ctx context.Context, name string, data []byte, perm fs.FileMode) error {
	p, err := m.gate.Resolve(name)
	if err != nil {
		return err
	}
	return m.throttle.Do(ctx, "writefile", func() error {
		return m.fsys.WriteFile(p, data, perm)
	})
}

// AppendFile appends data to the named file, creating it if necessary.
func (m *Mediator) AppendFile(ctx context.Context, name string, data []byte, perm fs.FileMode) error {
	p, err := m.gate.Resolve(name)
	if err != nil {
		return err
	}
	return m.throttle.Do(ctx, "appendfile", func() error {
		return m.fsys.AppendFile(p, data, perm)
	})
}

// MkdirAll creates the named directory along with any missing parents.
func (m *Mediator) MkdirAll(ctx context.Context, path string, perm fs.FileMode) error {
	p, err := m.gate.Resolve(path)
	if err != nil {
		return err
	}
	return m.throttle.Do(ctx, "mkdirall", func() error {
		return m.fsys.MkdirAll(p, perm)
	})
}

// ReadDir lists the named directory with rich entry metadata.
func (m *Mediator) ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error) {
	p, err := m.gate.Resolve(name)
	if err != nil {
		return nil, err
	}
	var entries []fs.DirEntry
	err = m.throttle.Do(ctx, "readdir", func() error {
		var opErr error
		entries, opErr = m.fsys.ReadDir(p)
		return opErr
	})
	return entries, err
}

// ReadDirNames lists the named directory as bare entry names.
func (m *Mediator) ReadDirNames(ctx context.Context, name string) ([]string, error) {
	entries, err := m.ReadDir(ctx, name)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}
	return names, nil
}

// Stat returns metadata for name, following symlinks.
func (m *Mediator) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	p, err := m.gate.Resolve(name)
	if err != nil {
		return nil, err
	}
	var info fs.FileInfo
	err = m.throttle.Do(ctx, "stat", func() error {
		var opErr error
		info, opErr = m.fsys.Stat(p)
		return opErr
	})
	return info, err
}

// Lstat returns metadata for name without following symlinks.
func (m *Mediator) Lstat(ctx context.Context, name string) (fs.FileInfo, error) {
	p, err := m.gate.Resolve(name)
	if err != nil {
		return nil, err
	}
	var info fs.FileInfo
	err = m.throttle.Do(ctx, "lstat", func() error {
		var opErr error
		info, opErr = m.fsys.Lstat(p)
		return opErr
	})
	return info, err
}

// Remove removes a single file or empty directory.
func (m *Mediator) Remove(ctx context.Context, name string) error {
	p, err := m.gate.Resolve(name)
	if err != nil {
		return err
	}
	return m.throttle.Do(ctx, "remove", func() error {
		return m.fsys.Remove(p)
	})
}

// RemoveAll removes name and anything it contains. Like os.RemoveAll it
// succeeds when the target is already gone.
func (m *Mediator) RemoveAll(ctx context.Context, name string) error {
	p, err := m.gate.Resolve(name)
	if err != nil {
		return err
	}
	return m.throttle.Do(ctx, "removeall", func() error {
		return m.fsys.RemoveAll(p)
	})
}

// Copy duplicates the file at src to dst. Both paths are validated
// before any I/O happens; a rejection of either leaves the filesystem
// untouched.
func (m *Mediator) Copy(ctx context.Context, src, dst string) error {
	srcPath, err := m.gate.Resolve(src)
	if err != nil {
		return err
	}
	dstPath, err := m.gate.Resolve(dst)
	if err != nil {
		return err
	}
	return m.throttle.Do(ctx, "copy", func() error {
		return m.fsys.CopyFile(srcPath, dstPath)
	})
}

// Rename moves oldname to newname. Both paths are validated before any
// I/O happens.
func (m *Mediator) Rename(ctx context.Context, oldname, newname string) error {
	oldPath, err := m.gate.Resolve(oldname)
	if err != nil {
		return err
	}
	newPath, err := m.gate.Resolve(newname)
	if err != nil {
		return err
	}
	return m.throttle.Do(ctx, "rename", func() error {
		return m.fsys.Rename(oldPath, newPath)
	})
}
