// Package pathgate confines caller-supplied paths to an approved
// directory tree. Every mediated operation resolves its path here before
// any system call is attempted; a rejection never reaches the filesystem.
package pathgate

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Gate validates and canonicalizes a raw path. The returned path is
// root-relative in slash form, ready for a rooted filesystem adapter.
type Gate interface {
	Resolve(raw string) (string, error)
}

// AccessError reports a path that was rejected by the gate.
type AccessError struct {
	Path   string
	Reason string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("access denied for %q: %s", e.Path, e.Reason)
}

// Unwrap makes gate rejections match errors.Is(err, fs.ErrPermission).
func (e *AccessError) Unwrap() error {
	return fs.ErrPermission
}

// Resolver is the default Gate. Relative paths are resolved against the
// root; absolute paths are accepted only when they already lie inside it.
type Resolver struct {
	root string
}

// NewResolver creates a resolver confined to root. The root is cleaned
// and made absolute so prefix checks cannot be fooled by ".." segments.
func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		return nil, fmt.Errorf("pathgate: empty root")
	}
	root = filepath.Clean(root)
	if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("pathgate: resolve root %q: %w", root, err)
		}
		root = abs
	}
	return &Resolver{root: root}, nil
}

// Root returns the approved root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve implements Gate.
func (r *Resolver) Resolve(raw string) (string, error) {
	if raw == "" {
		return "", &AccessError{Path: raw, Reason: "empty path"}
	}

	cleaned := filepath.Clean(raw)

	var resolved string
	if filepath.IsAbs(cleaned) {
		resolved = cleaned
	} else {
		resolved = filepath.Join(r.root, cleaned)
	}

	rel, err := filepath.Rel(r.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &AccessError{Path: raw, Reason: fmt.Sprintf("escapes root %q", r.root)}
	}

	rel = filepath.ToSlash(rel)
	if !fs.ValidPath(rel) {
		return "", &AccessError{Path: raw, Reason: "invalid path"}
	}
	return rel, nil
}
