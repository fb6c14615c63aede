// Package bridge accepts WebSocket connections from a remote executor and
// relays commands to it. At most one executor is current at a time; a new
// connection silently evicts the previous one.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	"github.com/blockgate/blockgate/internal/dispatch"
	"github.com/blockgate/blockgate/internal/events"
	"github.com/blockgate/blockgate/internal/ledger"
	"github.com/blockgate/blockgate/internal/log"
	"github.com/blockgate/blockgate/internal/protocol"
)

const (
	welcomeText = "Connected to blockgate"
	ackText     = "blockgate ready"
)

// Server is the executor-facing WebSocket endpoint.
type Server struct {
	listen   string
	ledger   *ledger.Ledger
	sessions *dispatch.SessionRegistry
	hub      *events.Hub
	logger   *slog.Logger
	server   *http.Server
}

// New creates a bridge Server.
func New(listen string, l *ledger.Ledger, sessions *dispatch.SessionRegistry, hub *events.Hub) *Server {
	return &Server{
		listen:   listen,
		ledger:   l,
		sessions: sessions,
		hub:      hub,
		logger:   log.WithComponent("bridge"),
	}
}

// Handler returns the WebSocket handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", websocket.Server{Handler: s.handleConn})
	return mux
}

// Start runs the WebSocket server (blocking) until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:        s.listen,
		Handler:     s.Handler(),
		ReadTimeout: 0, // connections are long-lived
	}

	s.logger.Info("bridge listening", "listen", s.listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("bridge shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("bridge shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("bridge server error: %w", err)
	}
}

// handleConn owns one executor connection from accept to disconnect.
func (s *Server) handleConn(conn *websocket.Conn) {
	sess := newSession(conn)
	logger := s.logger.With("session_id", sess.id, "remote", conn.Request().RemoteAddr)
	logger.Info("executor connected")

	// Last-connection-wins: the newcomer becomes current before any
	// handshake completes. The evicted session is closed, not notified.
	if prev := s.sessions.Attach(sess); prev != nil {
		logger.Info("evicting previous executor session", "evicted_session_id", prev.ID())
		if old, ok := prev.(*session); ok {
			old.close()
		}
	}
	s.hub.Publish(events.ExecutorConnected, map[string]string{"session_id": sess.id})

	go sess.writeLoop()

	if err := sess.queue(protocol.Welcome(welcomeText)); err != nil {
		logger.Error("failed to queue welcome", "error", err)
	}

	s.readLoop(sess, logger)

	sess.close()
	if s.sessions.Detach(sess) {
		s.hub.Publish(events.ExecutorDisconnected, map[string]string{"session_id": sess.id})
	}
	logger.Info("executor disconnected")
}

// readLoop decodes inbound frames until the connection fails. A frame that
// doesn't parse is discarded without closing the connection.
func (s *Server) readLoop(sess *session, logger *slog.Logger) {
	for {
		var frame string
		if err := websocket.Message.Receive(sess.conn, &frame); err != nil {
			logger.Debug("read loop ended", "error", err)
			return
		}

		msg, err := protocol.Decode([]byte(frame))
		if err != nil {
			logger.Error("invalid message from executor", "error", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeReady:
			logger.Info("executor ready")
			if err := sess.queue(protocol.Ack(ackText)); err != nil {
				logger.Error("failed to queue ack", "error", err)
			}

		case protocol.TypeCommandResult:
			s.handleResult(msg, logger)

		case protocol.TypeError:
			logger.Error("executor reported error", "error", msg.Error)

		default:
			logger.Warn("unknown message type", "type", msg.Type)
		}
	}
}

func (s *Server) handleResult(msg protocol.Message, logger *slog.Logger) {
	status := ledger.StatusAcknowledged
	eventType := events.CommandAcknowledged
	if !msg.Succeeded() {
		status = ledger.StatusFailed
		eventType = events.CommandFailed
	}

	logger.Info("command result",
		"command_id", msg.CommandID,
		"success", msg.Succeeded(),
		"result", string(msg.Result),
	)

	if !s.ledger.Advance(msg.CommandID, status) {
		logger.Debug("result for unknown or settled command", "command_id", msg.CommandID)
		return
	}
	s.hub.Publish(eventType, map[string]string{"command_id": msg.CommandID})
}
