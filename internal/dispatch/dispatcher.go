// Package dispatch drains the command ledger and forwards each record to the
// currently attached executor session. Delivery is at-most-once: a record
// drained with no session connected is dropped, never requeued.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/blockgate/blockgate/internal/events"
	"github.com/blockgate/blockgate/internal/ledger"
	"github.com/blockgate/blockgate/internal/log"
)

// DefaultDequeueWait bounds each pass of the dispatch loop and therefore the
// latency of a shutdown request.
const DefaultDequeueWait = time.Second

// Dispatcher runs the drain-and-forward loop.
type Dispatcher struct {
	ledger      *ledger.Ledger
	sessions    *SessionRegistry
	hub         *events.Hub
	logger      *slog.Logger
	dequeueWait time.Duration
}

// New creates a Dispatcher. A non-positive dequeueWait falls back to the
// default one-second wait.
func New(l *ledger.Ledger, sessions *SessionRegistry, hub *events.Hub, dequeueWait time.Duration) *Dispatcher {
	if dequeueWait <= 0 {
		dequeueWait = DefaultDequeueWait
	}
	return &Dispatcher{
		ledger:      l,
		sessions:    sessions,
		hub:         hub,
		logger:      log.WithComponent("dispatch"),
		dequeueWait: dequeueWait,
	}
}

// Start runs the dispatch loop. This is a blocking call that runs until ctx
// is cancelled; cancellation is observed within one dequeue wait.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("dispatch loop started")
	defer d.logger.Info("dispatch loop stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := d.ledger.Dequeue(ctx, d.dequeueWait)
		if rec == nil {
			continue
		}
		d.deliver(rec)
	}
}

// deliver forwards one record to the current session, if any. The record has
// already left the queue, so every outcome here is terminal for delivery.
func (d *Dispatcher) deliver(rec *ledger.Record) {
	cmdLogger := d.logger.With("command_id", rec.ID)

	sess := d.sessions.Current()
	if sess == nil {
		// Fire-and-forget: the record stays visible in history as queued
		// but is never redelivered.
		cmdLogger.Warn("no executor connected, dropping command", "command", rec.Text)
		d.hub.Publish(events.CommandDropped, map[string]string{"command_id": rec.ID})
		return
	}

	if err := sess.Send(rec.ID, rec.Text, rec.Metadata); err != nil {
		cmdLogger.Error("failed to send command", "session_id", sess.ID(), "error", err)
		d.ledger.Advance(rec.ID, ledger.StatusFailed)
		d.hub.Publish(events.CommandFailed, map[string]string{
			"command_id": rec.ID,
			"error":      err.Error(),
		})
		return
	}

	d.ledger.Advance(rec.ID, ledger.StatusDispatched)
	cmdLogger.Info("command dispatched", "session_id", sess.ID())
	d.hub.Publish(events.CommandDispatched, map[string]string{"command_id": rec.ID})
}
