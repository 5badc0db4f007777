package gatefs

import (
	"path/filepath"
)

// Pure path-composition helpers. These operate on strings only and
// never touch the gate, the limiter, or the retry engine.

// JoinPath joins any number of path elements into a single path.
func JoinPath(elem ...string) string {
	return filepath.Join(elem...)
}

// DirName returns all but the last element of path.
func DirName(path string) string {
	return filepath.Dir(path)
}

// BaseName returns the last element of path.
func BaseName(path string) string {
	return filepath.Base(path)
}

// ExtName returns the file name extension of path, including the dot.
func ExtName(path string) string {
	return filepath.Ext(path)
}

// CleanPath returns the shortest path name equivalent to path.
func CleanPath(path string) string {
	return filepath.Clean(path)
}

// SplitPath splits path into a directory and file name component.
func SplitPath(path string) (dir, file string) {
	return filepath.Split(path)
}
