package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/forgemcp/mcpcore/internal/codec"
	"github.com/forgemcp/mcpcore/internal/events"
	"github.com/forgemcp/mcpcore/internal/session"
)

// dispatchRequest handles initialize, logging/setLevel, the
// natively-handled component methods, and falls back to Handlers.HandleRequest.
func (e *Engine) dispatchRequest(ctx context.Context, sess *session.Session, msg codec.Message) []byte {
	switch msg.Method {
	case "initialize":
		return e.handleInitialize(sess, msg)
	case "logging/setLevel":
		return e.handleSetLevel(sess, msg)
	}

	if out, handled := e.dispatchComponentMethod(ctx, sess, msg); handled {
		return out
	}

	return e.dispatchUserRequest(ctx, sess, msg)
}

type initializeParams struct {
	ProtocolVersion string                     `json:"protocolVersion"`
	Capabilities    map[string]json.RawMessage `json:"capabilities"`
	ClientInfo      json.RawMessage            `json:"clientInfo"`
}

func (e *Engine) handleInitialize(sess *session.Session, msg codec.Message) []byte {
	var in initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &in); err != nil {
			out, _ := codec.EncodeError(msg.ID, codec.InvalidParams("malformed initialize params", nil))
			return out
		}
	}

	cfg := e.config()
	negotiated := negotiateVersion(cfg.SupportedProtocolVersions, in.ProtocolVersion)
	e.store.UpdateAfterInitialize(sess, negotiated, in.ClientInfo, in.Capabilities)

	result := map[string]any{
		"protocolVersion": negotiated,
		"serverInfo":      map[string]any{"name": cfg.ServerInfo.Name, "version": cfg.ServerInfo.Version},
		"capabilities":    capabilitiesWire(cfg.Capabilities),
	}
	out, _ := codec.EncodeResponse(msg.ID, result)
	return out
}

func (e *Engine) handleSetLevel(sess *session.Session, msg codec.Message) []byte {
	if !e.config().Capabilities.HasLogging() {
		out, _ := codec.EncodeError(msg.ID, codec.MethodNotFound("logging/setLevel"))
		return out
	}
	var in struct {
		Level string `json:"level"`
	}
	if err := json.Unmarshal(msg.Params, &in); err != nil || in.Level == "" {
		out, _ := codec.EncodeError(msg.ID, codec.InvalidParams("level is required", nil))
		return out
	}
	e.store.SetLogLevel(sess, in.Level)
	out, _ := codec.EncodeResponse(msg.ID, map[string]any{})
	return out
}

// dispatchComponentMethod handles the C4 methods natively; the bool
// return reports whether msg.Method was one of them at all.
func (e *Engine) dispatchComponentMethod(ctx context.Context, sess *session.Session, msg codec.Message) ([]byte, bool) {
	reg := e.mergedRegistry(sess.ID())
	fr := e.buildFrame(sess, sess.TransportContext()).WithRequest(toFrameRequest(msg))

	switch msg.Method {
	case "tools/list":
		return e.reply(msg, e.safeList(func() map[string]any {
			return reg.ListTools(cursorParam(msg.Params), e.config().ListPaginationLimit)
		})), true

	case "tools/call":
		var in struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(msg.Params, &in); err != nil {
			return e.errReply(msg, codec.InvalidParams("malformed tools/call params", nil)), true
		}
		e.store.TrackRequest(sess, msg.ID, msg.Method)
		result, rpcErr := e.safeCall(func() (map[string]any, *codec.RPCError) {
			return reg.CallTool(ctx, in.Name, in.Arguments, fr)
		})
		e.store.CompleteRequest(sess, msg.ID)
		return e.finish(msg, result, rpcErr), true

	case "prompts/list":
		return e.reply(msg, e.safeList(func() map[string]any {
			return reg.ListPrompts(cursorParam(msg.Params), e.config().ListPaginationLimit)
		})), true

	case "prompts/get":
		var in struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := json.Unmarshal(msg.Params, &in); err != nil {
			return e.errReply(msg, codec.InvalidParams("malformed prompts/get params", nil)), true
		}
		e.store.TrackRequest(sess, msg.ID, msg.Method)
		result, rpcErr := e.safeCall(func() (map[string]any, *codec.RPCError) {
			return reg.GetPrompt(ctx, in.Name, in.Arguments, fr)
		})
		e.store.CompleteRequest(sess, msg.ID)
		return e.finish(msg, result, rpcErr), true

	case "resources/list":
		return e.reply(msg, e.safeList(func() map[string]any {
			return reg.ListResources(cursorParam(msg.Params), e.config().ListPaginationLimit)
		})), true

	case "resources/templates/list":
		return e.reply(msg, e.safeList(func() map[string]any {
			return reg.ListResourceTemplates(cursorParam(msg.Params), e.config().ListPaginationLimit)
		})), true

	case "resources/read":
		var in struct {
			URI string `json:"uri"`
		}
		if err := json.Unmarshal(msg.Params, &in); err != nil {
			return e.errReply(msg, codec.InvalidParams("malformed resources/read params", nil)), true
		}
		e.store.TrackRequest(sess, msg.ID, msg.Method)
		result, rpcErr := e.safeCall(func() (map[string]any, *codec.RPCError) {
			return reg.ReadResource(ctx, in.URI, fr)
		})
		e.store.CompleteRequest(sess, msg.ID)
		return e.finish(msg, result, rpcErr), true

	case "completion/complete":
		if !e.config().Capabilities.HasCompletion() {
			return e.errReply(msg, codec.MethodNotFound("completion/complete")), true
		}
		var in struct {
			Ref      any `json:"ref"`
			Argument any `json:"argument"`
		}
		if err := json.Unmarshal(msg.Params, &in); err != nil {
			return e.errReply(msg, codec.InvalidParams("malformed completion/complete params", nil)), true
		}
		e.store.TrackRequest(sess, msg.ID, msg.Method)
		result, rpcErr := e.safeCall(func() (map[string]any, *codec.RPCError) {
			return reg.Complete(ctx, in.Ref, in.Argument, fr)
		})
		e.store.CompleteRequest(sess, msg.ID)
		return e.finish(msg, result, rpcErr), true
	}

	return nil, false
}

func cursorParam(params json.RawMessage) string {
	var in struct {
		Cursor string `json:"cursor"`
	}
	if len(params) > 0 {
		_ = json.Unmarshal(params, &in)
	}
	return in.Cursor
}

// dispatchUserRequest forwards any method the engine does not handle
// natively to the host's HandleRequest hook.
func (e *Engine) dispatchUserRequest(ctx context.Context, sess *session.Session, msg codec.Message) []byte {
	if e.handlers.HandleRequest == nil {
		return e.errReply(msg, codec.MethodNotFound(msg.Method))
	}

	e.store.TrackRequest(sess, msg.ID, msg.Method)
	fr := e.buildFrame(sess, sess.TransportContext()).WithRequest(toFrameRequest(msg))

	result, err := e.safeUserCall(func() (any, error) {
		return e.handlers.HandleRequest(ctx, msg.Method, msg.Params, fr)
	})
	e.store.CompleteRequest(sess, msg.ID)

	if err != nil {
		if rpcErr, ok := err.(*codec.RPCError); ok {
			return e.errReply(msg, rpcErr)
		}
		return e.errReply(msg, codec.InternalError(err.Error()))
	}
	if result == nil {
		return e.errReply(msg, codec.MethodNotFound(msg.Method))
	}
	out, _ := codec.EncodeResponse(msg.ID, result)
	return out
}

func (e *Engine) reply(msg codec.Message, result map[string]any) []byte {
	out, _ := codec.EncodeResponse(msg.ID, result)
	return out
}

func (e *Engine) errReply(msg codec.Message, rpcErr *codec.RPCError) []byte {
	out, _ := codec.EncodeError(msg.ID, rpcErr)
	return out
}

func (e *Engine) finish(msg codec.Message, result map[string]any, rpcErr *codec.RPCError) []byte {
	if rpcErr != nil {
		return e.errReply(msg, rpcErr)
	}
	return e.reply(msg, result)
}

// safeList runs a listing with panic recovery: a recovered panic is
// published as an ErrorEvent and leaves the result nil.
func (e *Engine) safeList(fn func() map[string]any) map[string]any {
	var out map[string]any
	func() {
		defer e.recoverInto(nil)
		out = fn()
	}()
	return out
}

// safeCall recovers a panicking component handler, translating it into
// internal_error.
func (e *Engine) safeCall(fn func() (map[string]any, *codec.RPCError)) (result map[string]any, rpcErr *codec.RPCError) {
	defer e.recoverInto(&rpcErr)
	return fn()
}

func (e *Engine) safeUserCall(fn func() (any, error)) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.sink.Publish(events.NewErrorEvent("", "execution", fmt.Errorf("%v", r), "recovered panic in user handler"))
			err = codec.InternalError(fmt.Sprintf("panic: %v", r))
		}
	}()
	return fn()
}

func (e *Engine) recoverInto(rpcErr **codec.RPCError) {
	if r := recover(); r != nil {
		e.sink.Publish(events.NewErrorEvent("", "execution", fmt.Errorf("%v", r), "recovered panic in handler"))
		if rpcErr != nil {
			*rpcErr = codec.InternalError(fmt.Sprintf("panic: %v", r))
		}
	}
}
