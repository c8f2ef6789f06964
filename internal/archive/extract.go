package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extract materializes root under dir, which must not already exist.
//
// Entry names come from an untrusted package, so each one is validated
// before anything is written for it: empty names, ".", "..", path
// separators, embedded NULs and duplicate siblings all abort with
// ErrMalformedArchive. Extraction is not transactional across the tree;
// entries written for earlier siblings stay on disk when a later entry
// fails. The verification gate run before Extract is what guarantees a
// forged package writes nothing at all.
func Extract(root *Entry, dir string) error {
	if root == nil || root.Kind != KindDirectory {
		return fmt.Errorf("%w: root is not a directory", ErrMalformedArchive)
	}
	if err := os.Mkdir(dir, 0o777); err != nil {
		return err
	}
	return extractDir(root, dir)
}

func extractDir(entry *Entry, dir string) error {
	seen := make(map[string]struct{}, len(entry.Children))

	for _, child := range entry.Children {
		if err := validateName(child.Name); err != nil {
			return err
		}
		if _, dup := seen[child.Name]; dup {
			return fmt.Errorf("%w: duplicate entry name %q", ErrMalformedArchive, child.Name)
		}
		seen[child.Name] = struct{}{}

		if err := extractEntry(child.Entry, filepath.Join(dir, child.Name)); err != nil {
			return err
		}
	}

	return nil
}

func extractEntry(entry *Entry, path string) error {
	if entry == nil {
		return fmt.Errorf("%w: missing entry body", ErrMalformedArchive)
	}

	switch entry.Kind {
	case KindRegular:
		return writeFileExcl(path, entry.Content, 0o666)
	case KindExecutable:
		return writeFileExcl(path, entry.Content, 0o777)
	case KindSymlink:
		// The target is written verbatim; resolvability and safety of the
		// link destination are the consumer's concern.
		return os.Symlink(string(entry.Content), path)
	case KindDirectory:
		if err := os.Mkdir(path, 0o777); err != nil {
			return err
		}
		return extractDir(entry, path)
	default:
		return fmt.Errorf("%w: unknown entry kind %d", ErrMalformedArchive, entry.Kind)
	}
}

// writeFileExcl creates the file exclusively. The extraction root was
// freshly created, so a pre-existing path can only mean the archive is
// trying to write the same name twice through some validation gap.
func writeFileExcl(path string, content []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty entry name", ErrMalformedArchive)
	case name == "." || name == "..":
		return fmt.Errorf("%w: entry named %q", ErrMalformedArchive, name)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("%w: entry name %q contains a path separator or NUL", ErrMalformedArchive, name)
	}
	return nil
}
