// Package walker implements filesystem enumeration for the tracker.
package walker

import (
	"context"
	"os"
	"path/filepath"
)

// Walker lists the non-ignored files below a target inside a project root.
// It implements ports.FileLister.
type Walker struct {
	rootAbs string
}

// New creates a walker for the given project root.
func New(root string) (*Walker, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Walker{rootAbs: abs}, nil
}

// ListFiles enumerates every file under target, a root-relative path.
// Returned paths are root-relative with forward slashes. Directories for
// which ignored returns true are pruned entirely; ignored files are
// excluded. A target that is itself a single file yields just that file if
// not ignored. Traversal errors propagate unchanged.
func (w *Walker) ListFiles(ctx context.Context, target string, ignored func(string) bool) ([]string, error) {
	abs := filepath.Join(w.rootAbs, filepath.FromSlash(target))

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	// Degenerate case: the target is a single file.
	if !info.IsDir() {
		rel, err := w.rel(abs)
		if err != nil {
			return nil, err
		}
		if ignored != nil && ignored(rel) {
			return nil, nil
		}
		return []string{rel}, nil
	}

	var files []string
	err = filepath.Walk(abs, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}

		rel, err := w.rel(path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if ignored != nil && ignored(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.IsDir() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// rel converts an absolute path to root-relative forward-slash form.
func (w *Walker) rel(abs string) (string, error) {
	rel, err := filepath.Rel(w.rootAbs, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
