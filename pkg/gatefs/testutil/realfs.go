package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gatefs/gatefs/pkg/gatefs/filesystem"
)

// RealFSHelper wires a rooted OS filesystem to a per-test temp
// directory and offers fixture shortcuts that fail the test on error.
type RealFSHelper struct {
	t    *testing.T
	root string
	fs   *filesystem.OSFileSystem
}

// NewRealFSHelper creates a helper rooted at t.TempDir().
func NewRealFSHelper(t *testing.T) *RealFSHelper {
	t.Helper()
	root := t.TempDir()
	return &RealFSHelper{
		t:    t,
		root: root,
		fs:   filesystem.NewOSFileSystem(root),
	}
}

// Root returns the temp root directory.
func (h *RealFSHelper) Root() string {
	return h.root
}

// FS returns the rooted filesystem.
func (h *RealFSHelper) FS() *filesystem.OSFileSystem {
	return h.fs
}

// WriteFixture creates a file (and its parents) under the root.
func (h *RealFSHelper) WriteFixture(name, content string) {
	h.t.Helper()
	full := filepath.Join(h.root, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		h.t.Fatalf("Failed to create fixture dir for %s: %v", name, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		h.t.Fatalf("Failed to write fixture %s: %v", name, err)
	}
}

// ReadFixture reads a file under the root.
func (h *RealFSHelper) ReadFixture(name string) string {
	h.t.Helper()
	data, err := os.ReadFile(filepath.Join(h.root, name))
	if err != nil {
		h.t.Fatalf("Failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

// FixtureExists reports whether a path exists under the root.
func (h *RealFSHelper) FixtureExists(name string) bool {
	h.t.Helper()
	_, err := os.Lstat(filepath.Join(h.root, name))
	return err == nil
}
