package pathgate_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/gatefs/gatefs/pkg/gatefs/pathgate"
)

func TestResolverAcceptsConfinedPaths(t *testing.T) {
	root := t.TempDir()
	resolver, err := pathgate.NewResolver(root)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"relative file", "notes.txt", "notes.txt"},
		{"nested relative", "a/b/c.txt", "a/b/c.txt"},
		{"dot", ".", "."},
		{"redundant segments", "a//b/./c.txt", "a/b/c.txt"},
		{"internal parent segment", "a/b/../c.txt", "a/c.txt"},
		{"absolute inside root", filepath.Join(root, "x/y.txt"), "x/y.txt"},
		{"absolute root itself", root, "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.raw)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolverRejectsEscapes(t *testing.T) {
	root := t.TempDir()
	resolver, err := pathgate.NewResolver(root)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"parent", ".."},
		{"parent climb", "../sibling/file.txt"},
		{"deep climb", "a/../../escape.txt"},
		{"absolute outside root", "/etc/passwd"},
		{"absolute parent of root", filepath.Dir(root)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(tt.raw)
			if err == nil {
				t.Fatalf("Resolve(%q) succeeded, want rejection", tt.raw)
			}
			var accessErr *pathgate.AccessError
			if !errors.As(err, &accessErr) {
				t.Errorf("Resolve(%q) error = %T, want *AccessError", tt.raw, err)
			}
			if !errors.Is(err, fs.ErrPermission) {
				t.Errorf("Resolve(%q) error does not match fs.ErrPermission", tt.raw)
			}
		})
	}
}

func TestNewResolverRequiresRoot(t *testing.T) {
	if _, err := pathgate.NewResolver(""); err == nil {
		t.Fatal("NewResolver(\"\") succeeded, want error")
	}
}

func TestNewResolverAbsolutizesRelativeRoot(t *testing.T) {
	resolver, err := pathgate.NewResolver("some/relative/root")
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	if !filepath.IsAbs(resolver.Root()) {
		t.Errorf("Root() = %q, want absolute path", resolver.Root())
	}
}
