package tracker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"pathwatch/internal/domain"
	"pathwatch/internal/domain/ports"
)

// Tracker is the file-change tracking facade. It owns the known-path set,
// the ignore list, and the callback registry, and reconciles subtrees of the
// project root against the filesystem through a FileLister.
//
// Tracker has no internal locking. All mutating calls (Reconcile,
// FindNewFiles, NotifyChanged, NotifyDeleted) must be serialized by the
// caller, typically through a single-consumer reconcile queue.
type Tracker struct {
	root     string // absolute project root
	lister   ports.FileLister
	ignore   *IgnoreList
	registry Registry
	known    PathSet
}

// New creates a tracker for the given absolute project root.
func New(root string, lister ports.FileLister, ignore *IgnoreList) *Tracker {
	return &Tracker{
		root:   root,
		lister: lister,
		ignore: ignore,
		known:  NewPathSet(),
	}
}

// Root returns the absolute project root.
func (t *Tracker) Root() string {
	return t.root
}

// OnChanged registers a handler for change events. An empty pattern matches
// every path. Returns the full current handler sequence.
func (t *Tracker) OnChanged(pattern string, h Handler) ([]Entry, error) {
	return t.registry.OnChanged(pattern, h)
}

// OnDeleted registers a handler for deletion events.
func (t *Tracker) OnDeleted(pattern string, h Handler) ([]Entry, error) {
	return t.registry.OnDeleted(pattern, h)
}

// NotifyChanged records path as seen and dispatches change handlers. It is
// the direct external trigger equivalent of a reconciliation observing the
// file.
func (t *Tracker) NotifyChanged(path string) error {
	return t.recordSeen(normalizePath(t.root, path))
}

// NotifyDeleted records path as removed and dispatches deletion handlers.
func (t *Tracker) NotifyDeleted(path string) error {
	return t.recordRemoved(normalizePath(t.root, path))
}

// Reconcile compares the known paths under target against a fresh filesystem
// scan, recording every file found as seen and every previously known file
// missing from the scan as removed. A target that does not exist is a silent
// no-op. Handler and traversal errors propagate and abort the pass; paths
// not yet processed are left unreconciled until the next call.
func (t *Tracker) Reconcile(ctx context.Context, target string) error {
	return t.reconcile(ctx, target, false)
}

// FindNewFiles reconciles target reporting only files not seen before.
// Already-known files are left untouched and deletions are never reported.
func (t *Tracker) FindNewFiles(ctx context.Context, target string) error {
	return t.reconcile(ctx, target, true)
}

func (t *Tracker) reconcile(ctx context.Context, target string, onlyNew bool) error {
	rel := normalizePath(t.root, target)
	if outsideRoot(rel) {
		return domain.ErrPathOutsideRoot
	}

	abs := filepath.Join(t.root, filepath.FromSlash(rel))
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			// A path that no longer exists has nothing to reconcile.
			return nil
		}
		return err
	}

	// Deletion detection: whatever is left in scope after the scan was known
	// under target but is gone now. Scoping to target keeps a partial
	// reconciliation from reporting files outside the subtree as deleted.
	scope := t.known.Under(rel)

	files, err := t.lister.ListFiles(ctx, rel, t.ignore.Ignored)
	if err != nil {
		return err
	}

	for _, f := range files {
		if onlyNew && scope.Contains(f) {
			continue
		}
		scope.Remove(f)
		if err := t.recordSeen(f); err != nil {
			return err
		}
	}

	if onlyNew {
		return nil
	}

	for _, f := range scope.Paths() {
		if err := t.recordRemoved(f); err != nil {
			return err
		}
	}

	log.Debug().
		Str("target", rel).
		Int("scanned", len(files)).
		Int("tracked", len(t.known)).
		Msg("reconcile complete")

	return nil
}

// Exists reports whether path is currently tracked. Both root-relative and
// absolute forms under the project root are accepted.
func (t *Tracker) Exists(path string) bool {
	rel := normalizePath(t.root, path)
	if outsideRoot(rel) {
		return false
	}
	return t.known.Contains(rel)
}

// IsIgnored reports whether path matches any configured ignore pattern.
func (t *Tracker) IsIgnored(path string) bool {
	return t.ignore.Ignored(normalizePath(t.root, path))
}

// AddIgnorePattern appends a pattern to the ignore list. Configuration-time
// only; reconciliations in flight are never mid-list.
func (t *Tracker) AddIgnorePattern(expr string) error {
	return t.ignore.Append(expr)
}

// Files returns the tracked paths sorted lexicographically.
func (t *Tracker) Files() []string {
	return t.known.Paths()
}

// recordSeen and recordRemoved are the only two PathSet mutation points; all
// higher-level reconciliation is expressed in terms of them. Ignored paths
// never pass through: a pattern appended after a path was tracked, or a
// direct notify for an ignored path, must not mutate the set or dispatch.

func (t *Tracker) recordSeen(path string) error {
	if t.ignore.Ignored(path) {
		return nil
	}
	t.known.Add(path)
	return t.registry.DispatchChanged(path)
}

func (t *Tracker) recordRemoved(path string) error {
	if t.ignore.Ignored(path) {
		return nil
	}
	t.known.Remove(path)
	return t.registry.DispatchDeleted(path)
}
