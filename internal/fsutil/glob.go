package fsutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnore skips dependency and build output directories.
var DefaultIgnore = []string{"node_modules", "dist", "build", "public", ".git", ".next"}

type GlobOptions struct {
	// MaxDepth limits how many directory levels below root are entered. Zero means unlimited.
	MaxDepth int
	// Ignore lists directory names that are never descended into.
	Ignore []string
}

// Glob walks root and returns slash-separated paths relative to root that
// match any of the doublestar patterns.
func Glob(root string, patterns []string, opts GlobOptions) ([]string, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	ignore := make(map[string]bool, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignore[name] = true
	}

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if ignore[d.Name()] {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 && strings.Count(rel, "/")+1 > opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, rel); ok {
				matches = append(matches, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(matches)
	return matches, nil
}
