package tracker

import (
	"fmt"
	"regexp"
)

// Handler is a unit of work invoked when a change or deletion event matching
// its pattern occurs. The path is root-relative. A non-nil error aborts the
// dispatch that triggered it and propagates to the reconciliation caller.
type Handler interface {
	Handle(path string) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(path string) error

// Handle calls f(path).
func (f HandlerFunc) Handle(path string) error {
	return f(path)
}

// Entry is a registered (pattern, handler) pair. An empty pattern matches
// every path.
type Entry struct {
	Pattern string
	handler Handler
	re      *regexp.Regexp
}

// Registry stores the ordered callback entries for change and deletion
// events. Entries are never removed once registered.
type Registry struct {
	changed []Entry
	deleted []Entry
}

// OnChanged appends a change handler and returns the full current sequence.
func (r *Registry) OnChanged(pattern string, h Handler) ([]Entry, error) {
	entry, err := newEntry(pattern, h)
	if err != nil {
		return nil, err
	}
	r.changed = append(r.changed, entry)
	return r.changed, nil
}

// OnDeleted appends a deletion handler and returns the full current sequence.
func (r *Registry) OnDeleted(pattern string, h Handler) ([]Entry, error) {
	entry, err := newEntry(pattern, h)
	if err != nil {
		return nil, err
	}
	r.deleted = append(r.deleted, entry)
	return r.deleted, nil
}

// DispatchChanged invokes matching change handlers in registration order.
// The first handler error stops the iteration and is returned unmodified.
func (r *Registry) DispatchChanged(path string) error {
	return dispatch(r.changed, path)
}

// DispatchDeleted invokes matching deletion handlers in registration order.
func (r *Registry) DispatchDeleted(path string) error {
	return dispatch(r.deleted, path)
}

func dispatch(entries []Entry, path string) error {
	for _, e := range entries {
		if e.re != nil && !e.re.MatchString(path) {
			continue
		}
		if err := e.handler.Handle(path); err != nil {
			return err
		}
	}
	return nil
}

func newEntry(pattern string, h Handler) (Entry, error) {
	if h == nil {
		return Entry{}, fmt.Errorf("handler must not be nil")
	}

	entry := Entry{Pattern: pattern, handler: h}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Entry{}, fmt.Errorf("invalid handler pattern %q: %w", pattern, err)
		}
		entry.re = re
	}
	return entry, nil
}
