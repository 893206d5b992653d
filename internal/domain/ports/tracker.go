package ports

import "context"

// FileLister enumerates the files below a directory on behalf of the tracker.
// Implementations return root-relative, forward-slash paths and must accept a
// target that is itself a single file (returning just that file if not
// ignored). Paths for which the ignored predicate returns true are excluded.
type FileLister interface {
	ListFiles(ctx context.Context, target string, ignored func(path string) bool) ([]string, error)
}

// ReconcileSink accepts requests to reconcile a subtree of the project root.
// Implementations serialize requests into a single consumer so that tracker
// calls never run concurrently.
type ReconcileSink interface {
	RequestReconcile(path string)
}

// FileWatcher defines the contract for file system monitoring.
type FileWatcher interface {
	// Start begins watching the project root.
	Start(ctx context.Context) error

	// Stop terminates file watching.
	Stop() error

	// IsRunning returns true if the watcher is active.
	IsRunning() bool
}
