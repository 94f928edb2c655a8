package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/forgemcp/mcpcore/internal/codec"
	"github.com/forgemcp/mcpcore/internal/events"
	"github.com/forgemcp/mcpcore/internal/session"
)

// dispatchNotification handles notifications/initialized (completes the
// handshake) and notifications/cancelled (reconciles a pending request);
// everything else is forwarded to Handlers.HandleNotification.
func (e *Engine) dispatchNotification(ctx context.Context, sess *session.Session, msg codec.Message) {
	switch msg.Method {
	case "notifications/initialized":
		e.handleInitialized(ctx, sess, msg)
		return
	case "notifications/cancelled":
		e.handleCancelled(sess, msg)
		return
	}

	if e.handlers.HandleNotification == nil {
		return
	}
	fr := e.buildFrame(sess, sess.TransportContext()).WithRequest(toFrameRequest(msg))
	func() {
		defer e.recoverInto(nil)
		e.handlers.HandleNotification(ctx, msg.Method, msg.Params, fr)
	}()
}

func (e *Engine) handleInitialized(ctx context.Context, sess *session.Session, msg codec.Message) {
	e.store.MarkInitialized(sess)
	e.sink.Publish(events.NewLogMessageEvent(sess.ID(), "info", "session initialized", nil))

	if e.handlers.OnInitialize == nil {
		return
	}
	fr := e.buildFrame(sess, sess.TransportContext())
	func() {
		defer e.recoverInto(nil)
		e.handlers.OnInitialize(ctx, sess.ClientInfo(), fr)
	}()
}

type cancelledParams struct {
	RequestID codec.ID `json:"requestId"`
	Reason    string   `json:"reason"`
}

func (e *Engine) handleCancelled(sess *session.Session, msg codec.Message) {
	var in cancelledParams
	if err := json.Unmarshal(msg.Params, &in); err != nil || in.RequestID.IsZero() {
		e.sink.Publish(events.NewLogMessageEvent(sess.ID(), "warning", "malformed notifications/cancelled", nil))
		return
	}

	pending, ok := e.store.CompleteRequest(sess, in.RequestID)
	if !ok {
		e.sink.Publish(events.NewLogMessageEvent(sess.ID(), "warning",
			fmt.Sprintf("cancelled unknown request id %s", in.RequestID.String()), nil))
		return
	}

	e.sink.Publish(events.NewLogMessageEvent(sess.ID(), "info",
		fmt.Sprintf("request %s (%s) cancelled: %s", in.RequestID.String(), pending.Method, in.Reason), nil))
}
