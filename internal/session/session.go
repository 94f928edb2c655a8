// Package session implements the per-client session store: creation,
// initialization state, pending-request tracking, idle expiry, and the
// one-way binding between a session and the transport it arrived on.
// Mutations on a single session are serialized by the session's own
// mutex; sessions never contend with one another.
package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/forgemcp/mcpcore/internal/codec"
)

// PendingRequest records the method and start time of an in-flight
// request, used to report duration on notifications/cancelled and to
// validate that a cancellation refers to a real in-flight request.
type PendingRequest struct {
	Method      string
	StartedAtMs int64
}

// Session is per-client state bound to a single logical connection,
// identified by a transport-chosen session id.
type Session struct {
	mu sync.Mutex

	id                 string
	initialized        bool
	protocolVersion    string
	clientInfo         json.RawMessage
	clientCapabilities map[string]json.RawMessage
	logLevel           string
	pending            map[string]PendingRequest
	transportContext   map[string]any
	createdAt          time.Time
}

// ID returns the session's transport-chosen identifier.
func (s *Session) ID() string { return s.id }

// Initialized reports whether notifications/initialized has been received.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// ProtocolVersion returns the negotiated protocol version, or "" before
// the initialize handshake completes.
func (s *Session) ProtocolVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocolVersion
}

// ClientInfo returns the clientInfo object supplied at initialize.
func (s *Session) ClientInfo() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientInfo
}

// ClientCapabilities returns the capability map supplied at initialize.
func (s *Session) ClientCapabilities() map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]json.RawMessage, len(s.clientCapabilities))
	for k, v := range s.clientCapabilities {
		out[k] = v
	}
	return out
}

// HasClientCapability reports whether the client advertised name during
// initialize (e.g. "sampling", "roots").
func (s *Session) HasClientCapability(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.clientCapabilities[name]
	return ok
}

// LogLevel returns the session's current syslog-style log level.
func (s *Session) LogLevel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logLevel
}

// TransportContext returns the transport-supplied metadata map (headers,
// peer info) most recently attached for this session.
func (s *Session) TransportContext() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transportContext
}

// CreatedAt returns when the session was first created. Immutable; safe
// to read without a lock, but kept as a method for API symmetry.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// HasPendingRequestID reports whether id is currently tracked as in-flight.
func (s *Session) HasPendingRequestID(id codec.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id.Key()]
	return ok
}

// PendingCount returns the number of in-flight requests tracked for this
// session.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
