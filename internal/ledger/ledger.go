// Package ledger holds the command queue and the bounded command history.
// The queue is the transient hand-off between producers (the world manager)
// and the dispatch loop; the history is an independent ring buffer recording
// every command ever enqueued, whether or not it was delivered.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Status tracks a command through the pipeline. It only moves forward:
// queued -> dispatched -> acknowledged | failed. A terminal status is never
// overwritten.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusDispatched   Status = "dispatched"
	StatusAcknowledged Status = "acknowledged"
	StatusFailed       Status = "failed"
)

// statusRank orders statuses so Advance can reject regressions.
func statusRank(s Status) int {
	switch s {
	case StatusQueued:
		return 0
	case StatusDispatched:
		return 1
	case StatusAcknowledged, StatusFailed:
		return 2
	default:
		return -1
	}
}

// Record is a single unit of work flowing through the pipeline.
type Record struct {
	ID        string         `json:"id"`
	Text      string         `json:"command"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	Status    Status         `json:"status"`
}

// ErrQueueFull is returned by Enqueue when the bounded queue has no room.
// The command is not recorded anywhere in that case.
var ErrQueueFull = errors.New("command queue is full")

// Ledger serializes all queue and history mutation behind one mutex. Dequeue
// waits on the queue channel so the dispatch loop wakes as soon as work
// arrives instead of polling.
type Ledger struct {
	mu     sync.Mutex
	queue  chan *Record
	ring   []*Record
	start  int
	size   int
	lastID int64
}

const (
	DefaultHistorySize = 1000
	DefaultQueueSize   = 1024
)

// New creates a Ledger with the given history and queue capacities.
// Non-positive values fall back to the defaults.
func New(historySize, queueSize int) *Ledger {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Ledger{
		queue: make(chan *Record, queueSize),
		ring:  make([]*Record, historySize),
	}
}

// Enqueue records a new command and pushes it onto the queue. The returned id
// is time-derived and strictly increasing across the process lifetime.
func (l *Ledger) Enqueue(text string, metadata map[string]any) (string, error) {
	if text == "" {
		return "", fmt.Errorf("command text is empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().UnixNano()
	if ts <= l.lastID {
		ts = l.lastID + 1
	}

	rec := &Record{
		ID:        fmt.Sprintf("cmd_%d", ts),
		Text:      text,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
		Status:    StatusQueued,
	}

	select {
	case l.queue <- rec:
	default:
		return "", ErrQueueFull
	}

	l.lastID = ts
	l.pushLocked(rec)
	return rec.ID, nil
}

// Dequeue removes and returns the oldest queued record, waiting up to wait
// for one to arrive. Returns nil when nothing was available in time or the
// context was cancelled. The record stays visible in history regardless.
func (l *Ledger) Dequeue(ctx context.Context, wait time.Duration) *Record {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case rec := <-l.queue:
		return rec
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// History returns the most recent limit records in insertion order,
// oldest-first. The snapshot is consistent and detached from internal state.
func (l *Ledger) History(limit int) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > l.size {
		limit = l.size
	}

	out := make([]Record, 0, limit)
	for i := l.size - limit; i < l.size; i++ {
		out = append(out, *l.ring[(l.start+i)%len(l.ring)])
	}
	return out
}

// Advance moves the record with the given id to status s. It reports whether
// the status changed. Regressions and updates to terminal records are
// rejected; unknown ids (aged out of history) are ignored.
func (l *Ledger) Advance(id string, s Status) bool {
	if statusRank(s) < 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Walk newest-first: status updates almost always concern recent commands.
	for i := l.size - 1; i >= 0; i-- {
		rec := l.ring[(l.start+i)%len(l.ring)]
		if rec.ID != id {
			continue
		}
		if statusRank(s) <= statusRank(rec.Status) {
			return false
		}
		rec.Status = s
		return true
	}
	return false
}

// Depth returns the number of records waiting in the queue.
func (l *Ledger) Depth() int {
	return len(l.queue)
}

func (l *Ledger) pushLocked(rec *Record) {
	capacity := len(l.ring)
	if l.size < capacity {
		l.ring[(l.start+l.size)%capacity] = rec
		l.size++
		return
	}

	// Overwrite oldest.
	l.ring[l.start] = rec
	l.start = (l.start + 1) % capacity
}
