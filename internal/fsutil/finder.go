// Package fsutil finds workflow files on disk.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoFiles is returned when a pattern matches nothing.
var ErrNoFiles = errors.New("no workflow files found")

// FindFiles returns the regular files under root whose slash-separated path
// relative to root matches pattern, e.g. "**/*.json". Results are sorted.
func FindFiles(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to match %q under %s: %w", pattern, root, err)
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(root, filepath.FromSlash(m)))
	}
	sort.Strings(files)
	return files, nil
}

// ExpandWorkflows turns a -workflow argument into file paths. A plain file
// is returned as is, a directory is searched for "**/*.json", anything else
// is treated as a glob pattern.
func ExpandWorkflows(arg string) ([]string, error) {
	if info, err := os.Stat(arg); err == nil {
		if !info.IsDir() {
			return []string{arg}, nil
		}
		files, err := FindFiles(arg, "**/*.json")
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w in %s", ErrNoFiles, arg)
		}
		return files, nil
	}

	base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
	files, err := FindFiles(filepath.FromSlash(base), pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w matching %s", ErrNoFiles, arg)
	}
	return files, nil
}
