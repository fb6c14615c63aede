package dispatch

import "sync"

// Session is a live executor connection the dispatcher can write to.
// The bridge implements it; the dispatcher never sees connection details.
type Session interface {
	// ID identifies the session for logging and eviction bookkeeping.
	ID() string
	// Send relays one command frame. It may block until the connection
	// accepts the write and returns an error once the session is closed.
	Send(commandID, command string, metadata map[string]any) error
}

// SessionRegistry holds the single current executor session. Attaching a new
// session evicts the previous one (last-connection-wins); there is no queue
// of pending connections.
type SessionRegistry struct {
	mu      sync.Mutex
	current Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{}
}

// Attach installs s as the current session and returns the session it
// replaced, or nil. The caller is responsible for closing the evicted one.
func (r *SessionRegistry) Attach(s Session) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.current
	r.current = s
	return prev
}

// Detach clears s if it is still the current session. A session replaced by
// a later Attach is left alone.
func (r *SessionRegistry) Detach(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || s == nil || r.current.ID() != s.ID() {
		return false
	}
	r.current = nil
	return true
}

// Current returns the attached session, or nil when no executor is connected.
func (r *SessionRegistry) Current() Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Connected reports whether an executor session is attached.
func (r *SessionRegistry) Connected() bool {
	return r.Current() != nil
}
