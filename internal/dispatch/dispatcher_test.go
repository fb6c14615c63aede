package dispatch

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/blockgate/blockgate/internal/events"
	"github.com/blockgate/blockgate/internal/ledger"
	"github.com/blockgate/blockgate/internal/log"
)

func TestMain(m *testing.M) {
	log.Setup("ERROR") // Suppress logs in tests
	os.Exit(m.Run())
}

// fakeSession records sent commands and can be told to fail.
type fakeSession struct {
	mu      sync.Mutex
	id      string
	sent    []string
	sendErr error
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Send(commandID, command string, metadata map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, commandID)
	return nil
}

func (f *fakeSession) sentIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *ledger.Ledger, *SessionRegistry) {
	t.Helper()
	l := ledger.New(100, 100)
	reg := NewSessionRegistry()
	d := New(l, reg, events.NewHub(100), 20*time.Millisecond)
	return d, l, reg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestDeliverMarksDispatched(t *testing.T) {
	t.Parallel()

	d, l, reg := newTestDispatcher(t)
	sess := &fakeSession{id: "s1"}
	reg.Attach(sess)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Start(ctx) }()

	id, err := l.Enqueue("setblock 100 64 100 minecraft:stone 0", nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	waitFor(t, func() bool {
		hist := l.History(1)
		return len(hist) == 1 && hist[0].Status == ledger.StatusDispatched
	})

	if got := sess.sentIDs(); len(got) != 1 || got[0] != id {
		t.Fatalf("unexpected sends: %v", got)
	}
}

func TestNoSessionDropsWithoutError(t *testing.T) {
	t.Parallel()

	d, l, _ := newTestDispatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Start(ctx) }()

	for i := 0; i < 3; i++ {
		if _, err := l.Enqueue("say hello", nil); err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
	}

	waitFor(t, func() bool { return l.Depth() == 0 })

	// Dropped records keep their queued status and are never redelivered.
	for _, rec := range l.History(3) {
		if rec.Status != ledger.StatusQueued {
			t.Fatalf("expected queued status, got %s", rec.Status)
		}
	}
}

func TestDroppedCommandNotRedeliveredToLaterSession(t *testing.T) {
	t.Parallel()

	d, l, reg := newTestDispatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Start(ctx) }()

	if _, err := l.Enqueue("say dropped", nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitFor(t, func() bool { return l.Depth() == 0 })

	sess := &fakeSession{id: "late"}
	reg.Attach(sess)

	id, err := l.Enqueue("say delivered", nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitFor(t, func() bool { return len(sess.sentIDs()) == 1 })

	if got := sess.sentIDs(); got[0] != id {
		t.Fatalf("late session received %v, expected only %s", got, id)
	}
}

func TestSendErrorMarksFailed(t *testing.T) {
	t.Parallel()

	d, l, reg := newTestDispatcher(t)
	reg.Attach(&fakeSession{id: "s1", sendErr: errors.New("connection reset")})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Start(ctx) }()

	if _, err := l.Enqueue("say boom", nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	waitFor(t, func() bool {
		hist := l.History(1)
		return len(hist) == 1 && hist[0].Status == ledger.StatusFailed
	})
}

func TestSecondSessionReceivesSubsequentSends(t *testing.T) {
	t.Parallel()

	d, l, reg := newTestDispatcher(t)

	first := &fakeSession{id: "first"}
	second := &fakeSession{id: "second"}
	reg.Attach(first)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Start(ctx) }()

	if _, err := l.Enqueue("say one", nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitFor(t, func() bool { return len(first.sentIDs()) == 1 })

	if evicted := reg.Attach(second); evicted != first {
		t.Fatalf("expected first session evicted, got %v", evicted)
	}

	if _, err := l.Enqueue("say two", nil); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitFor(t, func() bool { return len(second.sentIDs()) == 1 })

	if len(first.sentIDs()) != 1 {
		t.Fatalf("first session must receive no further commands, got %v", first.sentIDs())
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	d, _, _ := newTestDispatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}
}

func TestRegistryDetachOnlyClearsCurrent(t *testing.T) {
	t.Parallel()

	reg := NewSessionRegistry()
	first := &fakeSession{id: "first"}
	second := &fakeSession{id: "second"}

	reg.Attach(first)
	reg.Attach(second)

	// first was evicted; detaching it must not clear second.
	if reg.Detach(first) {
		t.Fatal("detaching an evicted session must be a no-op")
	}
	if reg.Current() != second {
		t.Fatal("second session should still be current")
	}

	if !reg.Detach(second) {
		t.Fatal("detaching the current session should succeed")
	}
	if reg.Current() != nil {
		t.Fatal("registry should be empty after detach")
	}
}
