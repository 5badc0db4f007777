package gatefs_test

import (
	"testing"

	"github.com/gatefs/gatefs/pkg/gatefs"
)

func TestPathHelpers(t *testing.T) {
	if got := gatefs.JoinPath("a", "b", "c.txt"); got != "a/b/c.txt" {
		t.Errorf("JoinPath = %q", got)
	}
	if got := gatefs.DirName("a/b/c.txt"); got != "a/b" {
		t.Errorf("DirName = %q", got)
	}
	if got := gatefs.BaseName("a/b/c.txt"); got != "c.txt" {
		t.Errorf("BaseName = %q", got)
	}
	if got := gatefs.ExtName("a/b/c.txt"); got != ".txt" {
		t.Errorf("ExtName = %q", got)
	}
	if got := gatefs.CleanPath("a//b/../c.txt"); got != "a/c.txt" {
		t.Errorf("CleanPath = %q", got)
	}
	dir, file := gatefs.SplitPath("a/b/c.txt")
	if dir != "a/b/" || file != "c.txt" {
		t.Errorf("SplitPath = (%q, %q)", dir, file)
	}

	// Helpers never reject anything: they are pure string functions,
	// escape-looking inputs included.
	if got := gatefs.CleanPath("../outside"); got != "../outside" {
		t.Errorf("CleanPath(../outside) = %q", got)
	}
}
