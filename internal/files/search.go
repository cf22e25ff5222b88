// Package files searches directory trees and extracts zip archives.
package files

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SearchOptions filters a Search. The zero value matches every file.
type SearchOptions struct {
	// Patterns are glob patterns matched against the file name.
	Patterns []string
	// IgnoreExtensions are suffixes such as ".log".
	IgnoreExtensions []string
	// IgnoreParts skips files with any path segment equal to one of these.
	IgnoreParts []string
	// Keywords keep only files whose content contains any of them.
	Keywords []string
	// MaxFiles caps the result after sorting. Zero means no cap.
	MaxFiles int
	// NoSort keeps walk order.
	NoSort bool
}

// Search walks folder recursively and returns the matching file paths.
func Search(folder string, opts SearchOptions) ([]string, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}

	seen := make(map[string]struct{})
	var found []string

	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == folder {
				return err
			}
			// Unreadable entries below the root are skipped.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matchesAny(d.Name(), patterns) {
			return nil
		}
		if hasSuffix(path, opts.IgnoreExtensions) || hasPart(path, folder, opts.IgnoreParts) {
			return nil
		}
		if len(opts.Keywords) > 0 && !containsKeyword(path, opts.Keywords) {
			return nil
		}
		if _, dup := seen[path]; dup {
			return nil
		}
		seen[path] = struct{}{}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", folder, err)
	}

	if !opts.NoSort {
		sort.Strings(found)
	}
	if opts.MaxFiles > 0 && len(found) > opts.MaxFiles {
		found = found[:opts.MaxFiles]
	}
	return found, nil
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func hasSuffix(path string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

func hasPart(path, root string, parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, p := range parts {
			if seg == p {
				return true
			}
		}
	}
	return false
}

// containsKeyword reports whether the file mentions any keyword. Unreadable
// files never match.
func containsKeyword(path string, keywords []string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	for _, k := range keywords {
		if bytes.Contains(data, []byte(k)) {
			return true
		}
	}
	return false
}
