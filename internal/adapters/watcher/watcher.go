// Package watcher implements the file system watcher using fsnotify.
//
// The watcher translates raw OS notifications into reconcile requests: it
// never touches tracker state itself. Writes and creates request a rescan of
// the changed path; deletions and renames request a rescan of the containing
// directory, so the reconciler's scoped deletion pass is what observes the
// missing file.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"pathwatch/internal/domain/ports"
)

// Watcher implements the FileWatcher port interface.
type Watcher struct {
	rootPath   string
	sink       ports.ReconcileSink
	isIgnored  func(path string) bool
	debounceMS int

	mu      sync.RWMutex
	watcher *fsnotify.Watcher
	running bool
	cancel  context.CancelFunc

	debouncer *Debouncer
}

// NewWatcher creates a new file system watcher. isIgnored is consulted with
// root-relative paths before anything is queued or watched.
func NewWatcher(rootPath string, sink ports.ReconcileSink, debounceMS int, isIgnored func(string) bool) *Watcher {
	return &Watcher{
		rootPath:   rootPath,
		sink:       sink,
		debounceMS: debounceMS,
		isIgnored:  isIgnored,
	}
}

// Start begins watching the project root.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.debouncer = NewDebouncer(time.Duration(w.debounceMS)*time.Millisecond, w.handleDebouncedEvent)

	w.running = true
	w.mu.Unlock()

	if err := w.addWatchRecursive(w.rootPath); err != nil {
		_ = w.Stop()
		return err
	}

	go w.eventLoop(watchCtx)

	log.Info().
		Str("path", w.rootPath).
		Int("debounce_ms", w.debounceMS).
		Msg("file watcher started")

	return nil
}

// Stop terminates file watching.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false

	if w.cancel != nil {
		w.cancel()
	}

	if w.debouncer != nil {
		w.debouncer.Stop()
	}

	if w.watcher != nil {
		err := w.watcher.Close()
		w.watcher = nil
		log.Info().Msg("file watcher stopped")
		return err
	}

	return nil
}

// IsRunning returns true if the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// addWatchRecursive adds watches to a directory and all subdirectories.
func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files/dirs we can't access
		}

		if !info.IsDir() {
			return nil
		}

		if rel, relErr := filepath.Rel(w.rootPath, path); relErr == nil {
			rel = filepath.ToSlash(rel)
			if rel != "." && w.isIgnored != nil && w.isIgnored(rel) {
				return filepath.SkipDir
			}
		}

		if err := w.watcher.Add(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to add watch")
			return nil // Continue even if we can't watch this dir
		}

		return nil
	})
}

// eventLoop handles fsnotify events.
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// handleEvent processes a single fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(w.rootPath, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if w.isIgnored != nil && w.isIgnored(rel) {
		return
	}

	var changeType ChangeType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		changeType = ChangeCreated
		// A new directory needs its own watch before anything inside it
		// produces events.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addWatchRecursive(event.Name)
		}
	case event.Op&fsnotify.Write == fsnotify.Write:
		changeType = ChangeModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		changeType = ChangeDeleted
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		// The old name is gone; the new name arrives as a separate CREATE.
		changeType = ChangeDeleted
	case event.Op&fsnotify.Chmod == fsnotify.Chmod:
		return
	default:
		return
	}

	w.debouncer.Add(rel, changeType)
}

// handleDebouncedEvent is called after the debounce window expires.
func (w *Watcher) handleDebouncedEvent(path string, changeType ChangeType) {
	target := path
	if changeType == ChangeDeleted {
		// Rescanning a vanished path is a no-op; rescan its directory so
		// the reconciler sees the file missing from scope.
		target = filepath.ToSlash(filepath.Dir(path))
	}

	log.Debug().
		Str("path", path).
		Str("change", string(changeType)).
		Str("target", target).
		Msg("requesting reconcile")

	w.sink.RequestReconcile(target)
}
