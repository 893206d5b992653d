package watcher

import (
	"sync"
	"time"
)

// ChangeType classifies a raw filesystem event for debouncing.
type ChangeType string

const (
	ChangeCreated  ChangeType = "created"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// debouncedEvent is a pending coalesced event for one path.
type debouncedEvent struct {
	Path       string
	ChangeType ChangeType
	Timer      *time.Timer
}

// Debouncer coalesces rapid file system events per path.
type Debouncer struct {
	window   time.Duration
	callback func(path string, changeType ChangeType)

	mu      sync.Mutex
	pending map[string]*debouncedEvent
	stopped bool
}

// NewDebouncer creates a new debouncer with the given window and callback.
func NewDebouncer(window time.Duration, callback func(path string, changeType ChangeType)) *Debouncer {
	return &Debouncer{
		window:   window,
		callback: callback,
		pending:  make(map[string]*debouncedEvent),
	}
}

// Add queues an event for debouncing. Repeated events for the same path
// within the window reset the timer and merge change types.
func (d *Debouncer) Add(path string, changeType ChangeType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if existing, ok := d.pending[path]; ok {
		existing.Timer.Stop()
		existing.ChangeType = mergeChangeTypes(existing.ChangeType, changeType)
		existing.Timer = time.AfterFunc(d.window, func() {
			d.fire(path)
		})
		return
	}

	d.pending[path] = &debouncedEvent{
		Path:       path,
		ChangeType: changeType,
		Timer: time.AfterFunc(d.window, func() {
			d.fire(path)
		}),
	}
}

// fire executes the callback for a path.
func (d *Debouncer) fire(path string) {
	d.mu.Lock()
	event, ok := d.pending[path]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	stopped := d.stopped
	d.mu.Unlock()

	if !stopped && d.callback != nil {
		d.callback(event.Path, event.ChangeType)
	}
}

// Stop stops all pending timers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for _, event := range d.pending {
		event.Timer.Stop()
	}
	d.pending = make(map[string]*debouncedEvent)
}

// mergeChangeTypes combines two change types, preferring the more
// significant one. Delete wins; create beats modify.
func mergeChangeTypes(existing, next ChangeType) ChangeType {
	if next == ChangeDeleted {
		return ChangeDeleted
	}
	if existing == ChangeCreated {
		return ChangeCreated
	}
	return next
}
