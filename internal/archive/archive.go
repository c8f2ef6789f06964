// Package archive defines the in-memory tree a package is built from and
// the traversals that move it on and off a real filesystem.
//
// A tree is collected from a trusted local directory during packing and
// materialized back to disk during unpacking. Only the unpack direction
// treats the tree as hostile: every entry name is re-validated before a
// single byte is written, because by then the tree came from an external
// package rather than the local filesystem.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrMalformedArchive is returned when an archive's structure or entry
// names fail validation.
var ErrMalformedArchive = errors.New("spk: malformed archive")

// Kind discriminates the entry variants.
type Kind uint8

const (
	KindRegular Kind = iota
	KindExecutable
	KindSymlink
	KindDirectory
)

// String returns the lowercase variant name.
func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindExecutable:
		return "executable"
	case KindSymlink:
		return "symlink"
	case KindDirectory:
		return "directory"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Entry is one node of a packaged tree.
//
// Regular and Executable entries keep the file bytes in Content. Symlink
// entries keep the raw link target in Content. Directory entries keep
// their members, in listing order, in Children.
type Entry struct {
	Kind     Kind
	Content  []byte
	Children []Child
}

// Child pairs a directory member with its name.
type Child struct {
	Name  string
	Entry *Entry
}

// Collect builds an Entry tree from the directory at dir.
//
// Regular files become Regular or Executable entries depending on the
// owner execute bit, symlinks become Symlink entries holding the exact
// link target, and directories recurse. Any other file type (device,
// socket, fifo) is skipped with a warning rather than failing the pack;
// the local filesystem is trusted input, so nothing else is validated
// here. File contents are read whole into memory because the complete
// archive must be serialized and hashed before any output is produced.
func Collect(dir string, logger *slog.Logger) (*Entry, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return collectDir(dir, logger)
}

func collectDir(dir string, logger *slog.Logger) (*Entry, error) {
	listing, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	children := make([]Child, 0, len(listing))
	for _, de := range listing {
		child, err := collectEntry(filepath.Join(dir, de.Name()), logger)
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}
		children = append(children, Child{Name: de.Name(), Entry: child})
	}

	return &Entry{Kind: KindDirectory, Children: children}, nil
}

// collectEntry reads one disk entry. A nil result with nil error means the
// entry was skipped.
func collectEntry(path string, logger *slog.Logger) (*Entry, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}

	switch {
	case info.Mode().IsRegular():
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		kind := KindRegular
		if info.Mode()&0o100 != 0 {
			kind = KindExecutable
		}
		return &Entry{Kind: kind, Content: content}, nil

	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return nil, err
		}
		return &Entry{Kind: KindSymlink, Content: []byte(target)}, nil

	case info.IsDir():
		return collectDir(path, logger)

	default:
		logger.Warn("cannot pack irregular file, skipping", "path", path, "mode", info.Mode().String())
		return nil, nil
	}
}
