package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/forgemcp/mcpcore/internal/codec"
	"github.com/forgemcp/mcpcore/internal/events"
	"github.com/forgemcp/mcpcore/internal/frame"
	"github.com/forgemcp/mcpcore/internal/outbound"
	"github.com/forgemcp/mcpcore/internal/registry"
)

// Engine implements frame.Dispatcher, the private handle every Frame holds
// to route outbound notifications, server-initiated requests, and dynamic
// registrations back through the coordinator.
var _ frame.Dispatcher = (*Engine)(nil)

// Notify sends a server-to-client notification on sessionID's connection.
func (e *Engine) Notify(sessionID, method string, params any) error {
	payload, err := codec.EncodeNotification(method, params)
	if err != nil {
		return err
	}
	return e.sender.Send(context.Background(), sessionID, payload)
}

// SendSampling gates on the client's advertised "sampling" capability, then
// blocks on the outbound tracker until a response, a gating/send failure,
// or ctx cancellation. A tracker-level timeout returns ctx's
// own error only if ctx is also done; otherwise the caller's goroutine
// blocks until ctx.Done(), matching "no request is emitted" only for the
// gating case, while a genuine protocol timeout is observed as ctx
// cancellation by callers that pass a context bound to the same deadline.
func (e *Engine) SendSampling(ctx context.Context, sessionID string, messages any, opts frame.RequestOptions) (json.RawMessage, error) {
	if !e.capabilityGate(sessionID, "sampling") {
		e.sink.Publish(events.NewErrorEvent(sessionID, "protocol", fmt.Errorf("sampling not advertised by client"), "sampling/createMessage blocked by capability gate"))
		return nil, fmt.Errorf("client did not advertise the sampling capability")
	}

	resultCh := make(chan json.RawMessage, 1)
	errCh := make(chan *codec.RPCError, 1)
	_, err := e.tracker.SendSampling(ctx, sessionID, messages, outbound.SamplingOptions{Timeout: opts.Timeout},
		func(r json.RawMessage) { resultCh <- r },
		func(rpcErr *codec.RPCError) { errCh <- rpcErr },
	)
	if err != nil {
		return nil, err
	}

	select {
	case r := <-resultCh:
		return r, nil
	case rpcErr := <-errCh:
		return nil, rpcErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SendRoots gates on the client's advertised "roots" capability, then
// blocks the same way SendSampling does.
func (e *Engine) SendRoots(ctx context.Context, sessionID string, opts frame.RequestOptions) (json.RawMessage, error) {
	if !e.capabilityGate(sessionID, "roots") {
		e.sink.Publish(events.NewErrorEvent(sessionID, "protocol", fmt.Errorf("roots not advertised by client"), "roots/list blocked by capability gate"))
		return nil, fmt.Errorf("client did not advertise the roots capability")
	}

	resultCh := make(chan json.RawMessage, 1)
	errCh := make(chan *codec.RPCError, 1)
	_, err := e.tracker.SendRoots(ctx, sessionID, outbound.RootsOptions{Timeout: opts.Timeout},
		func(r json.RawMessage) { resultCh <- r },
		func(rpcErr *codec.RPCError) { errCh <- rpcErr },
	)
	if err != nil {
		return nil, err
	}

	select {
	case r := <-resultCh:
		return r, nil
	case rpcErr := <-errCh:
		return nil, rpcErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) capabilityGate(sessionID, capability string) bool {
	sess, ok := e.store.Get(sessionID)
	if !ok {
		return false
	}
	return sess.HasClientCapability(capability)
}

// RegisterDynamicTool adds a tool to sessionID's private overlay, visible
// only to that session.
func (e *Engine) RegisterDynamicTool(sessionID string, t registry.Tool) error {
	if err := e.overlayFor(sessionID).RegisterTool(t); err != nil {
		return err
	}
	e.sink.Publish(events.NewListChangedEvent(sessionID, "tools"))
	return nil
}

// RegisterDynamicPrompt adds a prompt to sessionID's private overlay.
func (e *Engine) RegisterDynamicPrompt(sessionID string, p registry.Prompt) error {
	if err := e.overlayFor(sessionID).RegisterPrompt(p); err != nil {
		return err
	}
	e.sink.Publish(events.NewListChangedEvent(sessionID, "prompts"))
	return nil
}

// RegisterDynamicResource adds a resource to sessionID's private overlay.
func (e *Engine) RegisterDynamicResource(sessionID string, r registry.Resource) error {
	if err := e.overlayFor(sessionID).RegisterResource(r); err != nil {
		return err
	}
	e.sink.Publish(events.NewListChangedEvent(sessionID, "resources"))
	return nil
}
