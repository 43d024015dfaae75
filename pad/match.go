package pad

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match reports whether any of paths matches a gitignore style pattern.
//
// A pattern without a slash matches at any depth, a leading slash anchors it
// to the workspace root, and a trailing slash matches everything below a
// directory. Matching a directory also matches the files under it.
func Match(pattern string, paths []string) bool {
	globs := expand(pattern)
	if len(globs) == 0 {
		return false
	}
	for _, p := range paths {
		p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "./")
		p = strings.TrimPrefix(p, "/")
		for _, g := range globs {
			if ok, err := doublestar.Match(g, p); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// Matching returns the subset of paths that match pattern, in input order.
func Matching(pattern string, paths []string) []string {
	var out []string
	for _, p := range paths {
		if Match(pattern, []string{p}) {
			out = append(out, p)
		}
	}
	return out
}

func expand(pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") || strings.HasPrefix(pattern, "!") {
		return nil
	}
	dirOnly := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")

	anchored := strings.HasPrefix(pattern, "/") || strings.Contains(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")
	if !anchored && !strings.HasPrefix(pattern, "**") {
		pattern = "**/" + pattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil
	}
	if dirOnly {
		return []string{pattern + "/**"}
	}
	return []string{pattern, pattern + "/**"}
}
