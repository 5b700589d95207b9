package runner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover expands paths into the files to check. Directories are walked
// for files with a configured extension; explicitly named files are always
// included. Ignored paths are skipped, the result is sorted and deduplicated.
func (e *Engine) Discover(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				e.log.Warn("Skipping inaccessible path %s: %v", path, walkErr)
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			if d.IsDir() {
				if rel != "." && (e.isIgnored(rel) || e.isIgnored(rel+"/")) {
					e.log.Debug("Ignoring directory: %s", path)
					return filepath.SkipDir
				}
				return nil
			}
			if !e.hasExtension(path) {
				return nil
			}
			if e.isIgnored(rel) {
				e.log.Debug("Ignoring file: %s", path)
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Select keeps the files under root that a directory walk of root would
// pick up. Paths are taken relative to root for ignore matching.
func (e *Engine) Select(root string, files []string) []string {
	var selected []string
	for _, path := range files {
		if !e.hasExtension(path) {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if e.isIgnored(rel) || e.inIgnoredDir(rel) {
			e.log.Debug("Ignoring file: %s", path)
			continue
		}
		selected = append(selected, filepath.Clean(path))
	}
	sort.Strings(selected)
	return selected
}

// inIgnoredDir reports whether any parent directory of rel is ignored.
func (e *Engine) inIgnoredDir(rel string) bool {
	dir := filepath.Dir(rel)
	for dir != "." && dir != string(filepath.Separator) {
		if e.isIgnored(dir) || e.isIgnored(dir+"/") {
			return true
		}
		dir = filepath.Dir(dir)
	}
	return false
}

func (e *Engine) hasExtension(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, ext := range e.opts.Extensions {
		if strings.HasSuffix(base, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func (e *Engine) isIgnored(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pattern := range e.opts.IgnorePatterns {
		if matched, err := doublestar.Match(pattern, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// ValidatePatterns reports the first malformed ignore pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	return nil
}
