// Package tracker maintains the set of files known to exist under a project
// root and dispatches change and deletion callbacks when a reconciliation
// against the filesystem observes a difference.
package tracker

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// PathSet is the record of all files known to exist as of the last
// reconciliation. Paths are stored in normalized root-relative form.
type PathSet map[string]struct{}

// NewPathSet creates an empty path set.
func NewPathSet() PathSet {
	return make(PathSet)
}

// Add inserts a path. Idempotent if already present.
func (s PathSet) Add(p string) {
	s[p] = struct{}{}
}

// Remove deletes a path. Idempotent if absent.
func (s PathSet) Remove(p string) {
	delete(s, p)
}

// Contains reports whether a path is in the set.
func (s PathSet) Contains(p string) bool {
	_, ok := s[p]
	return ok
}

// Under returns a new set holding every path that equals root or lies
// beneath it. A root of "." selects the whole set.
func (s PathSet) Under(root string) PathSet {
	scope := make(PathSet)
	if root == "." || root == "" {
		for p := range s {
			scope[p] = struct{}{}
		}
		return scope
	}

	prefix := root + "/"
	for p := range s {
		if p == root || strings.HasPrefix(p, prefix) {
			scope[p] = struct{}{}
		}
	}
	return scope
}

// Paths returns the members sorted lexicographically.
func (s PathSet) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// normalizePath converts p into the canonical root-relative, forward-slash
// form used for PathSet membership and pattern matching. Absolute paths are
// made relative to root; paths outside root come back with a ".." prefix,
// which callers treat as unknown.
func normalizePath(root, p string) string {
	p = filepath.ToSlash(p)
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(root, filepath.FromSlash(p))
		if err != nil {
			return path.Clean(p)
		}
		p = filepath.ToSlash(rel)
	}
	return path.Clean(p)
}

// outsideRoot reports whether a normalized path escapes the project root.
func outsideRoot(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../")
}
