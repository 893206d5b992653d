package hub

import (
	"errors"
	"testing"
	"time"

	"pathwatch/internal/domain/events"
	"pathwatch/internal/testutil"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestHubBroadcastsToAllSubscribers(t *testing.T) {
	h := New()
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.Stop()

	a := testutil.NewMockSubscriber("a")
	b := testutil.NewMockSubscriber("b")
	h.Subscribe(a)
	h.Subscribe(b)
	waitFor(t, time.Second, func() bool { return h.SubscriberCount() == 2 })

	h.Publish(events.NewFileChangedEvent("content/post.md"))

	waitFor(t, time.Second, func() bool {
		return a.EventCount() == 1 && b.EventCount() == 1
	})

	got := a.Events()[0]
	if got.Type() != events.EventTypeFileChanged {
		t.Fatalf("event type = %v, want %v", got.Type(), events.EventTypeFileChanged)
	}
}

func TestHubUnsubscribeClosesSubscriber(t *testing.T) {
	h := New()
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.Stop()

	sub := testutil.NewMockSubscriber("gone")
	h.Subscribe(sub)
	waitFor(t, time.Second, func() bool { return h.SubscriberCount() == 1 })

	h.Unsubscribe("gone")
	waitFor(t, time.Second, func() bool { return h.SubscriberCount() == 0 })

	if !sub.IsClosed() {
		t.Fatal("subscriber not closed after Unsubscribe")
	}

	h.Publish(events.NewFileChangedEvent("x"))
	time.Sleep(20 * time.Millisecond)
	if sub.EventCount() != 0 {
		t.Fatal("unsubscribed subscriber still received events")
	}
}

func TestHubDropsFailingSubscriber(t *testing.T) {
	h := New()
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer h.Stop()

	bad := testutil.NewMockSubscriber("bad")
	bad.SetSendError(errors.New("send failed"))
	good := testutil.NewMockSubscriber("good")
	h.Subscribe(bad)
	h.Subscribe(good)
	waitFor(t, time.Second, func() bool { return h.SubscriberCount() == 2 })

	h.Publish(events.NewFileDeletedEvent("old.md"))

	// The failing subscriber is evicted; the healthy one keeps receiving.
	waitFor(t, time.Second, func() bool { return h.SubscriberCount() == 1 })
	waitFor(t, time.Second, func() bool { return good.EventCount() == 1 })
}

func TestHubStopClosesAllSubscribers(t *testing.T) {
	h := New()
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sub := testutil.NewMockSubscriber("s")
	h.Subscribe(sub)
	waitFor(t, time.Second, func() bool { return h.SubscriberCount() == 1 })

	if err := h.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if !sub.IsClosed() {
		t.Fatal("subscriber not closed after Stop")
	}
	if h.IsRunning() {
		t.Fatal("IsRunning = true after Stop")
	}
}

func TestHubStartIsIdempotent(t *testing.T) {
	h := New()
	if err := h.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := h.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	defer h.Stop()

	if !h.IsRunning() {
		t.Fatal("IsRunning = false after Start")
	}
}
