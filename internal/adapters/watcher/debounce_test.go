package watcher

import (
	"sync"
	"testing"
	"time"
)

type firedEvent struct {
	path       string
	changeType ChangeType
}

// collector records debouncer callbacks for assertions.
type collector struct {
	mu    sync.Mutex
	fired []firedEvent
	ch    chan firedEvent
}

func newCollector() *collector {
	return &collector{ch: make(chan firedEvent, 16)}
}

func (c *collector) callback(path string, changeType ChangeType) {
	c.mu.Lock()
	c.fired = append(c.fired, firedEvent{path, changeType})
	c.mu.Unlock()
	c.ch <- firedEvent{path, changeType}
}

func (c *collector) wait(t *testing.T) firedEvent {
	t.Helper()
	select {
	case e := <-c.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced event")
		return firedEvent{}
	}
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fired)
}

func TestDebouncerFiresAfterWindow(t *testing.T) {
	c := newCollector()
	d := NewDebouncer(10*time.Millisecond, c.callback)
	defer d.Stop()

	d.Add("a.txt", ChangeModified)

	e := c.wait(t)
	if e.path != "a.txt" || e.changeType != ChangeModified {
		t.Fatalf("fired %+v, want {a.txt modified}", e)
	}
}

func TestDebouncerCoalescesRepeatedEvents(t *testing.T) {
	c := newCollector()
	d := NewDebouncer(20*time.Millisecond, c.callback)
	defer d.Stop()

	d.Add("a.txt", ChangeModified)
	d.Add("a.txt", ChangeModified)
	d.Add("a.txt", ChangeModified)

	c.wait(t)
	time.Sleep(50 * time.Millisecond)
	if got := c.count(); got != 1 {
		t.Fatalf("fired %d events, want 1", got)
	}
}

func TestDebouncerMergesChangeTypes(t *testing.T) {
	tests := []struct {
		name  string
		first ChangeType
		then  ChangeType
		want  ChangeType
	}{
		{"delete wins over modify", ChangeModified, ChangeDeleted, ChangeDeleted},
		{"delete wins over create", ChangeCreated, ChangeDeleted, ChangeDeleted},
		{"create beats modify", ChangeCreated, ChangeModified, ChangeCreated},
		{"modify stays modify", ChangeModified, ChangeModified, ChangeModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCollector()
			d := NewDebouncer(10*time.Millisecond, c.callback)
			defer d.Stop()

			d.Add("a.txt", tt.first)
			d.Add("a.txt", tt.then)

			if e := c.wait(t); e.changeType != tt.want {
				t.Fatalf("merged type = %v, want %v", e.changeType, tt.want)
			}
		})
	}
}

func TestDebouncerTracksPathsIndependently(t *testing.T) {
	c := newCollector()
	d := NewDebouncer(10*time.Millisecond, c.callback)
	defer d.Stop()

	d.Add("a.txt", ChangeModified)
	d.Add("b.txt", ChangeCreated)

	c.wait(t)
	c.wait(t)
	if got := c.count(); got != 2 {
		t.Fatalf("fired %d events, want 2", got)
	}
}

func TestDebouncerStopDropsPending(t *testing.T) {
	c := newCollector()
	d := NewDebouncer(20*time.Millisecond, c.callback)

	d.Add("a.txt", ChangeModified)
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if got := c.count(); got != 0 {
		t.Fatalf("fired %d events after Stop, want 0", got)
	}

	// Adds after Stop are ignored.
	d.Add("b.txt", ChangeModified)
	time.Sleep(60 * time.Millisecond)
	if got := c.count(); got != 0 {
		t.Fatalf("fired %d events after Stop+Add, want 0", got)
	}
}

func TestMergeChangeTypes(t *testing.T) {
	if got := mergeChangeTypes(ChangeDeleted, ChangeModified); got != ChangeModified {
		// A recreate after delete within the window lands as the later event.
		t.Fatalf("mergeChangeTypes(deleted, modified) = %v, want modified", got)
	}
}
