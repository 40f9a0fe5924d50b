// Package fsext provides extended file system functions
package fsext

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ArtifactPerm is the mode used for every file written into an output directory.
const ArtifactPerm = 0o644

// DirPerm is the mode used for output directories.
const DirPerm = 0o755

// Abs returns an absolute representation of path.
//
// If the path is not absolute it will be joined with root
// to turn it into an absolute path. The root path is assumed
// to be a directory.
func Abs(root, path string) string {
	if path == "" {
		return filepath.Clean(root)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return filepath.Clean(path)
}

// JoinInside joins name onto dir and rejects names that would escape dir,
// like "../report.txt" or an absolute path.
func JoinInside(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty file name")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("file name %q must be relative", name)
	}
	p := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file name %q escapes the output directory", name)
	}
	return p, nil
}

// WriteFileAll writes data to filename, creating any missing parent directories.
func WriteFileAll(fs Fs, filename string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(filename), DirPerm); err != nil {
		return err
	}
	return WriteFile(fs, filename, data, ArtifactPerm)
}
