package events

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	t.Parallel()

	h := NewHub(10)
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(CommandQueued, map[string]string{"command_id": "cmd_1"})

	select {
	case ev := <-ch:
		if ev.Type != CommandQueued {
			t.Fatalf("unexpected event type %q", ev.Type)
		}
		if ev.ID != 1 {
			t.Fatalf("unexpected event id %d", ev.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestSnapshotSince(t *testing.T) {
	t.Parallel()

	h := NewHub(10)
	h.Publish(CommandQueued, nil)
	h.Publish(CommandDispatched, nil)
	h.Publish(CommandAcknowledged, nil)

	all := h.SnapshotSince(0)
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}

	tail := h.SnapshotSince(all[1].ID)
	if len(tail) != 1 || tail[0].Type != CommandAcknowledged {
		t.Fatalf("unexpected tail: %#v", tail)
	}
}

func TestRingOverwritesOldest(t *testing.T) {
	t.Parallel()

	h := NewHub(2)
	h.Publish(CommandQueued, nil)
	h.Publish(CommandDispatched, nil)
	h.Publish(CommandDropped, nil)

	snap := h.SnapshotSince(0)
	if len(snap) != 2 {
		t.Fatalf("expected 2 events, got %d", len(snap))
	}
	if snap[0].Type != CommandDispatched || snap[1].Type != CommandDropped {
		t.Fatalf("unexpected ring contents: %#v", snap)
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	h := NewHub(10)
	_, cancel := h.Subscribe() // never drained
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			h.Publish(CommandQueued, nil)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on slow subscriber")
	}
}
