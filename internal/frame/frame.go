// Package frame implements the per-request immutable context ("Frame")
// passed into every user callback: assigns, transport metadata, session
// identity, and the current request, plus a private handle used to
// dispatch outbound notifications and requests back through the
// coordinator.
package frame

import (
	"context"
	"encoding/json"
	"time"

	"github.com/forgemcp/mcpcore/internal/registry"
)

// Request mirrors the inbound message currently being processed (a
// request, or the notification passed to a notification hook); absent
// outside of message dispatch (e.g. inside the OnInitialize hook).
type Request struct {
	ID     RequestID
	Method string
	Params json.RawMessage
}

// RequestID is a thin re-export so frame callers don't need to import
// internal/codec just to read a Frame's current request id.
type RequestID interface {
	String() string
	IsString() bool
	IsZero() bool
}

// RequestOptions configures an outbound sampling or roots request.
type RequestOptions struct {
	// Timeout overrides the outbound tracker's default; zero means "use
	// the server's configured default".
	Timeout time.Duration
}

// Dispatcher is the coordinator-side handle a Frame holds privately, used
// to route outbound notifications/requests and dynamic registrations back
// to the session that owns this frame. internal/engine implements it.
type Dispatcher interface {
	Notify(sessionID, method string, params any) error
	SendSampling(ctx context.Context, sessionID string, messages any, opts RequestOptions) (json.RawMessage, error)
	SendRoots(ctx context.Context, sessionID string, opts RequestOptions) (json.RawMessage, error)
	RegisterDynamicTool(sessionID string, t registry.Tool) error
	RegisterDynamicPrompt(sessionID string, p registry.Prompt) error
	RegisterDynamicResource(sessionID string, r registry.Resource) error
}

// framePrivate holds the fields grouped under Frame.private: session_id,
// client_info, client_capabilities, protocol_version, and the dispatch
// handle. Modeled as a struct instead of a generic map for type safety.
type framePrivate struct {
	sessionID          string
	clientInfo         json.RawMessage
	clientCapabilities map[string]json.RawMessage
	protocolVersion    string
	dispatch           Dispatcher
}

// Frame is the immutable-by-convention per-request record. Callers should
// treat a *Frame as read-only except through its methods; the engine
// builds a fresh Frame for each dispatched request, so mutating one
// caller's assigns never leaks to another request.
type Frame struct {
	assigns     map[string]any
	transport   map[string]any
	initialized bool
	request     *Request

	private framePrivate
}

// New builds the base frame for a session, with no request in flight yet.
func New(sessionID string, transport map[string]any, clientInfo json.RawMessage, clientCapabilities map[string]json.RawMessage, protocolVersion string, initialized bool, dispatch Dispatcher) *Frame {
	return &Frame{
		assigns:     make(map[string]any),
		transport:   transport,
		initialized: initialized,
		private: framePrivate{
			sessionID:          sessionID,
			clientInfo:         clientInfo,
			clientCapabilities: clientCapabilities,
			protocolVersion:    protocolVersion,
			dispatch:           dispatch,
		},
	}
}

// WithRequest returns a shallow copy of f with its current request set,
// used by the engine immediately before invoking a request handler.
func (f *Frame) WithRequest(req Request) *Frame {
	cp := *f
	cp.request = &req
	return &cp
}

// Assigns returns the host-populated assigns map (satisfies registry.FrameContext).
func (f *Frame) Assigns() map[string]any { return f.assigns }

// SetAssign stores a value under key in this frame's assigns map. The
// engine builds a new frame, with empty assigns, for every dispatched
// message, so a value set here is not seen by later requests.
func (f *Frame) SetAssign(key string, value any) { f.assigns[key] = value }

// TransportMeta returns the transport-supplied metadata map (satisfies registry.FrameContext).
func (f *Frame) TransportMeta() map[string]any { return f.transport }

// Initialized mirrors the owning session's initialized flag.
func (f *Frame) Initialized() bool { return f.initialized }

// CurrentRequest returns the request being processed, if any.
func (f *Frame) CurrentRequest() (Request, bool) {
	if f.request == nil {
		return Request{}, false
	}
	return *f.request, true
}

// SessionID returns the owning session's id.
func (f *Frame) SessionID() string { return f.private.sessionID }

// ClientInfo returns the clientInfo object supplied at initialize.
func (f *Frame) ClientInfo() json.RawMessage { return f.private.clientInfo }

// ProtocolVersion returns the negotiated protocol version.
func (f *Frame) ProtocolVersion() string { return f.private.protocolVersion }

// HasClientCapability reports whether the client advertised name during
// initialize (e.g. "sampling", "roots").
func (f *Frame) HasClientCapability(name string) bool {
	_, ok := f.private.clientCapabilities[name]
	return ok
}

// Notify sends a server notification on this frame's session.
func (f *Frame) Notify(method string, params any) error {
	return f.private.dispatch.Notify(f.private.sessionID, method, params)
}

// SendSampling issues a gated sampling/createMessage request and blocks
// until a response, an error response, or ctx cancellation. The outbound
// tracker's own timeout does not end the wait; only ctx does.
func (f *Frame) SendSampling(ctx context.Context, messages any, opts RequestOptions) (json.RawMessage, error) {
	return f.private.dispatch.SendSampling(ctx, f.private.sessionID, messages, opts)
}

// SendRoots issues a gated roots/list request.
func (f *Frame) SendRoots(ctx context.Context, opts RequestOptions) (json.RawMessage, error) {
	return f.private.dispatch.SendRoots(ctx, f.private.sessionID, opts)
}

// RegisterTool adds a tool visible only on this session.
func (f *Frame) RegisterTool(t registry.Tool) error {
	return f.private.dispatch.RegisterDynamicTool(f.private.sessionID, t)
}

// RegisterPrompt adds a prompt visible only on this session.
func (f *Frame) RegisterPrompt(p registry.Prompt) error {
	return f.private.dispatch.RegisterDynamicPrompt(f.private.sessionID, p)
}

// RegisterResource adds a resource visible only on this session.
func (f *Frame) RegisterResource(r registry.Resource) error {
	return f.private.dispatch.RegisterDynamicResource(f.private.sessionID, r)
}
