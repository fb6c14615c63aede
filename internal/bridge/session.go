package bridge

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/blockgate/blockgate/internal/log"
	"github.com/blockgate/blockgate/internal/protocol"
)

// ErrSessionClosed is returned by Send once the underlying connection is gone.
var ErrSessionClosed = errors.New("session closed")

// outboundBuffer absorbs short bursts; a full buffer makes Send block until
// the writer catches up, which is the intended backpressure.
const outboundBuffer = 16

// session wraps one executor connection. All writes go through the out
// channel and a single writer goroutine, so connection churn never races
// the dispatch loop.
type session struct {
	id     string
	conn   *websocket.Conn
	out    chan protocol.Message
	closed chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newSession(conn *websocket.Conn) *session {
	id := uuid.NewString()
	return &session{
		id:     id,
		conn:   conn,
		out:    make(chan protocol.Message, outboundBuffer),
		closed: make(chan struct{}),
		logger: log.WithSession(id),
	}
}

// ID implements dispatch.Session.
func (s *session) ID() string { return s.id }

// Send implements dispatch.Session. It queues an execute_command frame for
// the writer goroutine. No timeout is imposed: an unresponsive connection
// stalls the dispatch loop until the connection fails or is closed.
func (s *session) Send(commandID, command string, metadata map[string]any) error {
	return s.queue(protocol.ExecuteCommand(commandID, command, metadata))
}

func (s *session) queue(msg protocol.Message) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}
	select {
	case s.out <- msg:
		return nil
	case <-s.closed:
		return ErrSessionClosed
	}
}

// writeLoop drains the outbound channel onto the wire. A write failure closes
// the session; the read loop then unwinds on its own.
func (s *session) writeLoop() {
	for {
		select {
		case msg := <-s.out:
			data, err := protocol.Encode(msg)
			if err != nil {
				s.logger.Error("failed to encode outbound message", "type", msg.Type, "error", err)
				continue
			}
			if err := websocket.Message.Send(s.conn, string(data)); err != nil {
				s.logger.Error("failed to write to executor", "error", err)
				s.close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
	})
}
