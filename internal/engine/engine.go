// Package engine implements the protocol engine: the single dispatch
// point for inbound JSON-RPC messages — initialize handshake, ping,
// capability gating, request/notification routing, and batch handling.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/forgemcp/mcpcore/internal/codec"
	"github.com/forgemcp/mcpcore/internal/config"
	"github.com/forgemcp/mcpcore/internal/events"
	"github.com/forgemcp/mcpcore/internal/frame"
	"github.com/forgemcp/mcpcore/internal/outbound"
	"github.com/forgemcp/mcpcore/internal/registry"
	"github.com/forgemcp/mcpcore/internal/session"
)

// Sender is the transport handle the engine sends encoded bytes through,
// both for direct replies via the caller's return value and for
// engine-initiated notifications and outbound requests.
type Sender interface {
	Send(ctx context.Context, sessionID string, payload []byte) error
}

// Handlers are the user server's optional hooks for request methods,
// notification methods, and the post-handshake callback, not otherwise
// handled natively by the engine or the component registry.
type Handlers struct {
	// HandleRequest answers any request method the engine does not handle
	// natively. Returning a nil error with a non-nil result replies with
	// that result; returning (nil, nil) yields method_not_found.
	HandleRequest func(ctx context.Context, method string, params json.RawMessage, fr *frame.Frame) (result any, err error)

	// HandleNotification observes any notification method not handled
	// natively (progress, roots/list_changed, and unrecognized methods).
	HandleNotification func(ctx context.Context, method string, params json.RawMessage, fr *frame.Frame)

	// OnInitialize runs after notifications/initialized marks the session
	// initialized, before any other request is dispatched. The frame it
	// receives is built for this call only: assigns set on it are not
	// carried into the frames of later requests.
	OnInitialize func(ctx context.Context, clientInfo json.RawMessage, fr *frame.Frame)
}

// Engine is the coordinator: it owns no session state directly (that's
// session.Store's job) but is the only component that sequences a decode
// through session lookup, dispatch, and encode.
type Engine struct {
	mu sync.RWMutex

	cfg      *config.Config
	store    *session.Store
	registry *registry.Registry
	tracker  *outbound.Tracker
	sender   Sender
	sink     events.Sink
	handlers Handlers

	overlays map[string]*registry.Registry // per-session dynamic registrations
}

// New builds an Engine. sink may be nil (defaults to a no-op sink).
func New(cfg *config.Config, store *session.Store, reg *registry.Registry, tracker *outbound.Tracker, sender Sender, sink events.Sink, handlers Handlers) *Engine {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Engine{
		cfg:      cfg,
		store:    store,
		registry: reg,
		tracker:  tracker,
		sender:   sender,
		sink:     sink,
		handlers: handlers,
		overlays: make(map[string]*registry.Registry),
	}
}

// Reconfigure applies a hot-reloaded configuration: idle timeout,
// outbound default timeout, and pagination limit take effect immediately;
// server_info/supported_protocol_versions changes only affect sessions
// initialized after this call, since protocol_version is negotiated once
// per session.
func (e *Engine) Reconfigure(cfg *config.Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()

	e.store.SetIdleTimeout(cfg.SessionIdleTimeout())
	e.tracker.SetDefaultTimeout(cfg.OutboundRequestDefaultTimeout())
	e.sink.Publish(events.NewConfigReloadedEvent())
}

func (e *Engine) config() *config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// HandleInbound is the single entry point a transport calls with raw
// bytes for one connection. The transport already knows session_id and
// transport_context; decoding and classification happen here.
func (e *Engine) HandleInbound(ctx context.Context, binding session.TransportBinding, sessionID string, transportContext map[string]any, raw []byte) ([]byte, error) {
	decoded, rpcErr := codec.Decode(raw)
	if rpcErr != nil {
		out, _ := codec.EncodeError(codec.ID{}, rpcErr)
		return out, nil
	}

	sess := e.store.Attach(binding, sessionID, transportContext)

	if decoded.IsBatch() {
		return e.handleBatch(ctx, sess, decoded.Items)
	}

	msg, _ := decoded.Single()
	reply, had := e.handleOne(ctx, sess, msg)
	if !had {
		return nil, nil
	}
	return reply, nil
}

// NotifyClosed tears down every session bound to binding, used when the
// bound transport signals termination.
func (e *Engine) NotifyClosed(binding session.TransportBinding) {
	e.store.NotifyTransportClosed(binding)
}

func (e *Engine) handleBatch(ctx context.Context, sess *session.Session, items []codec.Message) ([]byte, error) {
	for _, m := range items {
		if m.IsInitialize() {
			out, _ := codec.EncodeError(m.ID, codec.InvalidRequest("Initialize cannot be part of a batch"))
			return out, nil
		}
	}

	if sess.Initialized() && !config.SupportsBatching(sess.ProtocolVersion()) {
		out, _ := codec.EncodeError(codec.ID{}, codec.InvalidRequest(
			fmt.Sprintf("batching requires protocol version >= %s", config.BatchingMinProtocolVersion)))
		return out, nil
	}

	var parts [][]byte
	for _, m := range items {
		reply, had := e.handleOne(ctx, sess, m)
		if had {
			parts = append(parts, reply)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return codec.EncodeBatch(parts), nil
}

// handleOne runs the per-message dispatch: ping, handshake gating,
// request routing, notification routing, returning the encoded reply
// bytes (if any) and whether a reply exists.
func (e *Engine) handleOne(ctx context.Context, sess *session.Session, msg codec.Message) ([]byte, bool) {
	if msg.IsResponse() || msg.IsError() {
		e.handleOutboundReply(msg)
		return nil, false
	}

	if msg.IsPing() {
		out, _ := codec.EncodeResponse(msg.ID, map[string]any{})
		return out, true
	}

	if !msg.IsInitializeLifecycle() && !sess.Initialized() {
		if msg.IsNotification() {
			e.sink.Publish(events.NewLogMessageEvent(sess.ID(), "info", "dropped notification before initialize: "+msg.Method, nil))
			return nil, false
		}
		out, _ := codec.EncodeError(msg.ID, codec.InvalidRequest("Server not initialized"))
		return out, true
	}

	if msg.IsRequest() {
		out := e.dispatchRequest(ctx, sess, msg)
		return out, true
	}

	if msg.IsNotification() {
		e.dispatchNotification(ctx, sess, msg)
		return nil, false
	}

	out, _ := codec.EncodeError(msg.ID, codec.InvalidRequest("unrecognized message shape"))
	return out, true
}

func (e *Engine) handleOutboundReply(msg codec.Message) {
	id := msg.ID.String()
	if msg.IsError() {
		e.tracker.Fail(id, msg.Err)
		return
	}
	e.tracker.Resolve(id, msg.Result)
}

// buildFrame assembles the Frame a component handler or user hook sees for
// sess, with no request populated yet.
func (e *Engine) buildFrame(sess *session.Session, transportContext map[string]any) *frame.Frame {
	caps := sess.ClientCapabilities()
	return frame.New(sess.ID(), transportContext, sess.ClientInfo(), caps, sess.ProtocolVersion(), sess.Initialized(), e)
}

// mergedRegistry returns the static registry with sess's dynamic overlay
// spliced on top, if one exists.
func (e *Engine) mergedRegistry(sessionID string) *registry.Registry {
	e.mu.RLock()
	overlay := e.overlays[sessionID]
	e.mu.RUnlock()
	if overlay == nil {
		return e.registry
	}
	return e.registry.Merged(overlay)
}

func (e *Engine) overlayFor(sessionID string) *registry.Registry {
	e.mu.Lock()
	defer e.mu.Unlock()
	ov, ok := e.overlays[sessionID]
	if !ok {
		ov = registry.NewRegistry()
		e.overlays[sessionID] = ov
	}
	return ov
}
