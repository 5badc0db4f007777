package filesystem

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements FileSystem against the operating system,
// rooted at a fixed directory. Names outside the root (or otherwise
// invalid per fs.ValidPath) are rejected before any system call.
type OSFileSystem struct {
	root string
}

// NewOSFileSystem creates an OS-backed filesystem rooted at the given path.
func NewOSFileSystem(root string) *OSFileSystem {
	return &OSFileSystem{root: root}
}

// Root returns the directory all names are resolved against.
func (osfs *OSFileSystem) Root() string {
	return osfs.root
}

// Open implements fs.FS.
func (osfs *OSFileSystem) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return os.Open(filepath.Join(osfs.root, name))
}

// ReadFile implements ReadFS.
func (osfs *OSFileSystem) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	return os.ReadFile(filepath.Join(osfs.root, name))
}

// ReadDir implements ReadFS.
func (osfs *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	return os.ReadDir(filepath.Join(osfs.root, name))
}

// Stat implements ReadFS, following symlinks.
func (osfs *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	return os.Stat(filepath.Join(osfs.root, name))
}

// Lstat implements ReadFS without following symlinks.
func (osfs *OSFileSystem) Lstat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "lstat", Path: name, Err: fs.ErrInvalid}
	}
	return os.Lstat(filepath.Join(osfs.root, name))
}

// WriteFile implements WriteFS.
func (osfs *OSFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}
	return os.WriteFile(filepath.Join(osfs.root, name), data, perm)
}

// AppendFile implements WriteFS, creating the file if it does not exist.
func (osfs *OSFileSystem) AppendFile(name string, data []byte, perm fs.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "appendfile", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.OpenFile(filepath.Join(osfs.root, name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// MkdirAll implements WriteFS.
func (osfs *OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	if !fs.ValidPath(path) {
		return &fs.PathError{Op: "mkdirall", Path: path, Err: fs.ErrInvalid}
	}
	return os.MkdirAll(filepath.Join(osfs.root, path), perm)
}

// Remove implements WriteFS.
func (osfs *OSFileSystem) Remove(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
	}
	return os.Remove(filepath.Join(osfs.root, name))
}

// RemoveAll implements WriteFS.
func (osfs *OSFileSystem) RemoveAll(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "removeall", Path: name, Err: fs.ErrInvalid}
	}
	return os.RemoveAll(filepath.Join(osfs.root, name))
}

// Rename implements WriteFS.
func (osfs *OSFileSystem) Rename(oldpath, newpath string) error {
	if !fs.ValidPath(oldpath) {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrInvalid}
	}
	if !fs.ValidPath(newpath) {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrInvalid}
	}
	return os.Rename(filepath.Join(osfs.root, oldpath), filepath.Join(osfs.root, newpath))
}

// CopyFile implements WriteFS. The destination is created (or truncated)
// with the source's permission bits.
func (osfs *OSFileSystem) CopyFile(oldpath, newpath string) error {
	if !fs.ValidPath(oldpath) {
		return &fs.PathError{Op: "copyfile", Path: oldpath, Err: fs.ErrInvalid}
	}
	if !fs.ValidPath(newpath) {
		return &fs.PathError{Op: "copyfile", Path: newpath, Err: fs.ErrInvalid}
	}
	srcPath := filepath.Join(osfs.root, oldpath)
	dstPath := filepath.Join(osfs.root, newpath)

	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &fs.PathError{Op: "copyfile", Path: oldpath, Err: fs.ErrInvalid}
	}

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
