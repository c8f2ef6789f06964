// Package testutil provides filesystem fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Node describes one fixture entry for WriteTree.
type Node struct {
	Content string
	Exec    bool
	Symlink string
	Dir     bool
}

// WriteTree materializes entries under root. Map keys are slash-separated
// paths relative to root; parent directories are created as needed, so
// intermediate directories only need their own entry when they must stay
// empty.
func WriteTree(t testing.TB, root string, entries map[string]Node) {
	t.Helper()

	// Create in sorted order so parents exist before children.
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		node := entries[p]
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", full, err)
		}

		switch {
		case node.Dir:
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", full, err)
			}
		case node.Symlink != "":
			if err := os.Symlink(node.Symlink, full); err != nil {
				t.Fatalf("symlink %s: %v", full, err)
			}
		default:
			mode := os.FileMode(0o644)
			if node.Exec {
				mode = 0o755
			}
			if err := os.WriteFile(full, []byte(node.Content), mode); err != nil {
				t.Fatalf("write %s: %v", full, err)
			}
		}
	}
}
