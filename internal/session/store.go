package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/forgemcp/mcpcore/internal/codec"
	"github.com/forgemcp/mcpcore/internal/events"
)

// TransportBinding is an opaque, comparable token the transport supplies
// to identify "the connection this session arrived on". A *net.Conn, a
// stream id, or a simple string all satisfy this; the store never
// inspects it beyond map membership.
type TransportBinding any

type entry struct {
	session *Session
	binding TransportBinding
	timer   *time.Timer
}

// Store owns every live session and the idle-expiry timer for each. Only
// the Store mutates its session map; all its methods are safe for
// concurrent use by multiple goroutines, typically one per inbound
// transport message.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*entry
	bindings    map[TransportBinding]map[string]struct{}
	idleTimeout time.Duration
	sink        events.Sink
}

// NewStore creates an empty session store with the given idle-expiry
// duration.
func NewStore(idleTimeout time.Duration, sink events.Sink) *Store {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Store{
		sessions:    make(map[string]*entry),
		bindings:    make(map[TransportBinding]map[string]struct{}),
		idleTimeout: idleTimeout,
		sink:        sink,
	}
}

// SetIdleTimeout updates the idle timeout applied to subsequent Attach
// calls; existing timers are not retroactively rescheduled, so a
// configuration reload only affects sessions from their next touch
// onward.
func (st *Store) SetIdleTimeout(d time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.idleTimeout = d
}

// Attach creates a session if sessionID is unknown, or touches and
// returns the existing one, resetting its idle timer either way.
func (st *Store) Attach(binding TransportBinding, sessionID string, transportContext map[string]any) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if e, ok := st.sessions[sessionID]; ok {
		e.session.mu.Lock()
		e.session.transportContext = transportContext
		e.session.mu.Unlock()
		e.timer.Reset(st.idleTimeout)
		st.bindLocked(binding, sessionID)
		return e.session
	}

	sess := &Session{
		id:               sessionID,
		logLevel:         "debug",
		pending:          make(map[string]PendingRequest),
		transportContext: transportContext,
		createdAt:        time.Now(),
	}
	e := &entry{session: sess, binding: binding}
	e.timer = time.AfterFunc(st.idleTimeout, func() { st.expire(sessionID) })
	st.sessions[sessionID] = e
	st.bindLocked(binding, sessionID)

	st.sink.Publish(events.NewSessionCreatedEvent(sessionID))
	return sess
}

func (st *Store) bindLocked(binding TransportBinding, sessionID string) {
	if binding == nil {
		return
	}
	set, ok := st.bindings[binding]
	if !ok {
		set = make(map[string]struct{})
		st.bindings[binding] = set
	}
	set[sessionID] = struct{}{}
}

func (st *Store) unbindLocked(binding TransportBinding, sessionID string) {
	if binding == nil {
		return
	}
	set, ok := st.bindings[binding]
	if !ok {
		return
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(st.bindings, binding)
	}
}

func (st *Store) expire(sessionID string) {
	st.mu.Lock()
	e, ok := st.sessions[sessionID]
	if !ok {
		st.mu.Unlock()
		return
	}
	delete(st.sessions, sessionID)
	st.unbindLocked(e.binding, sessionID)
	st.mu.Unlock()

	st.sink.Publish(events.NewSessionDestroyedEvent(sessionID, "idle_timeout"))
}

// Destroy removes a session immediately, stopping its idle timer. Used
// when the host explicitly closes a session.
func (st *Store) Destroy(sessionID string) {
	st.mu.Lock()
	e, ok := st.sessions[sessionID]
	if !ok {
		st.mu.Unlock()
		return
	}
	e.timer.Stop()
	delete(st.sessions, sessionID)
	st.unbindLocked(e.binding, sessionID)
	st.mu.Unlock()

	st.sink.Publish(events.NewSessionDestroyedEvent(sessionID, "closed"))
}

// NotifyTransportClosed destroys every session bound to binding, used
// when the bound transport signals termination.
func (st *Store) NotifyTransportClosed(binding TransportBinding) {
	st.mu.Lock()
	ids := st.bindings[binding]
	toDestroy := make([]string, 0, len(ids))
	for id := range ids {
		toDestroy = append(toDestroy, id)
	}
	delete(st.bindings, binding)
	for _, id := range toDestroy {
		if e, ok := st.sessions[id]; ok {
			e.timer.Stop()
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, id := range toDestroy {
		st.sink.Publish(events.NewSessionDestroyedEvent(id, "transport_closed"))
	}
}

// Get looks up a session without touching its idle timer.
func (st *Store) Get(sessionID string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Snapshot returns every live session, for cmd/mcpcored's monitor view.
func (st *Store) Snapshot() []*Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, e := range st.sessions {
		out = append(out, e.session)
	}
	return out
}

// UpdateAfterInitialize records the negotiated protocol version and
// client-supplied identity after a successful initialize request.
func (st *Store) UpdateAfterInitialize(s *Session, protocolVersion string, clientInfo json.RawMessage, clientCapabilities map[string]json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocolVersion = protocolVersion
	s.clientInfo = clientInfo
	s.clientCapabilities = clientCapabilities
}

// MarkInitialized transitions the session's initialized flag false->true.
// Calling it on an already-initialized session leaves the flag true, so
// the transition still happens only once.
func (st *Store) MarkInitialized(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
}

// SetLogLevel updates the session's syslog-style log level.
func (st *Store) SetLogLevel(s *Session, level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLevel = level
}

// TrackRequest records an in-flight request so a later cancellation or
// completion can be validated and timed.
func (st *Store) TrackRequest(s *Session, id codec.ID, method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id.Key()] = PendingRequest{Method: method, StartedAtMs: time.Now().UnixMilli()}
}

// CompleteRequest removes and returns the pending-request record for id,
// if any.
func (st *Store) CompleteRequest(s *Session, id codec.ID) (PendingRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.pending[id.Key()]
	if ok {
		delete(s.pending, id.Key())
	}
	return pr, ok
}

// HasPendingRequest reports whether id is tracked as in-flight for s.
func (st *Store) HasPendingRequest(s *Session, id codec.ID) bool {
	return s.HasPendingRequestID(id)
}
