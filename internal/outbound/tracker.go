// Package outbound implements the server-initiated request tracker:
// issuing sampling/createMessage and roots/list, correlating the client's
// eventual response by request id, enforcing per-request timeouts, and
// emitting notifications/cancelled when a timeout fires.
package outbound

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forgemcp/mcpcore/internal/codec"
	"github.com/forgemcp/mcpcore/internal/events"
)

// Sender is the minimal transport handle the tracker needs: deliver bytes
// to whichever connection session sessionID is bound to.
type Sender interface {
	Send(ctx context.Context, sessionID string, payload []byte) error
}

// SamplingOptions shapes a sampling/createMessage request.
type SamplingOptions struct {
	Timeout          time.Duration
	ModelPreferences any
	SystemPrompt     string
	MaxTokens        int
}

// RootsOptions shapes a roots/list request.
type RootsOptions struct {
	Timeout time.Duration
}

type record struct {
	method    string
	sessionID string
	onResult  func(json.RawMessage)
	onError   func(*codec.RPCError)
	timer     *time.Timer
}

// Tracker correlates outbound requests with their eventual response or
// timeout. Request ids are minted with uuid so they never collide with a
// client-chosen id on the same connection.
type Tracker struct {
	mu             sync.Mutex
	records        map[string]*record
	sender         Sender
	sink           events.Sink
	defaultTimeout time.Duration
}

// NewTracker builds a Tracker. defaultTimeout is used whenever an
// individual request's opts.Timeout is zero.
func NewTracker(sender Sender, sink events.Sink, defaultTimeout time.Duration) *Tracker {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Tracker{
		records:        make(map[string]*record),
		sender:         sender,
		sink:           sink,
		defaultTimeout: defaultTimeout,
	}
}

// SetDefaultTimeout updates the timeout applied to future requests whose
// opts.Timeout is zero, applied on a configuration hot-reload.
func (t *Tracker) SetDefaultTimeout(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.defaultTimeout = d
}

// SendSampling emits a gated sampling/createMessage request. onResult is
// invoked (off the caller's goroutine, from Resolve) if a response
// arrives before the timeout; onError if an error response arrives. A
// failure to send is returned as the error, without calling onError.
// Neither callback is invoked if the timeout fires first:
// the caller learns nothing further for that id.
func (t *Tracker) SendSampling(ctx context.Context, sessionID string, messages any, opts SamplingOptions, onResult func(json.RawMessage), onError func(*codec.RPCError)) (string, error) {
	params := map[string]any{"messages": messages}
	if opts.ModelPreferences != nil {
		params["modelPreferences"] = opts.ModelPreferences
	}
	if opts.SystemPrompt != "" {
		params["systemPrompt"] = opts.SystemPrompt
	}
	if opts.MaxTokens > 0 {
		params["maxTokens"] = opts.MaxTokens
	}
	return t.send(ctx, sessionID, "sampling/createMessage", params, opts.Timeout, onResult, onError)
}

// SendRoots emits a gated roots/list request.
func (t *Tracker) SendRoots(ctx context.Context, sessionID string, opts RootsOptions, onResult func(json.RawMessage), onError func(*codec.RPCError)) (string, error) {
	return t.send(ctx, sessionID, "roots/list", map[string]any{}, opts.Timeout, onResult, onError)
}

func (t *Tracker) send(ctx context.Context, sessionID, method string, params any, timeout time.Duration, onResult func(json.RawMessage), onError func(*codec.RPCError)) (string, error) {
	if timeout <= 0 {
		timeout = t.defaultTimeout
	}
	id := uuid.NewString()
	reqID := codec.StringID(id)

	payload, err := codec.EncodeRequest(method, params, reqID)
	if err != nil {
		return "", err
	}

	rec := &record{method: method, sessionID: sessionID, onResult: onResult, onError: onError}
	rec.timer = time.AfterFunc(timeout, func() { t.expire(id) })

	t.mu.Lock()
	t.records[id] = rec
	t.mu.Unlock()

	if err := t.sender.Send(ctx, sessionID, payload); err != nil {
		t.mu.Lock()
		delete(t.records, id)
		t.mu.Unlock()
		rec.timer.Stop()
		return "", err
	}

	return id, nil
}

// Resolve delivers a successful response for id. Reports whether id was a
// known outstanding request (it may have already timed out).
func (t *Tracker) Resolve(id string, result json.RawMessage) bool {
	rec, ok := t.take(id)
	if !ok {
		return false
	}
	if rec.onResult != nil {
		rec.onResult(result)
	}
	t.sink.Publish(events.NewOutboundResolvedEvent(rec.sessionID, id, rec.method, false))
	return true
}

// Fail delivers an error response for id: cancels the timer, logs, and
// runs the onError callback if one was supplied.
func (t *Tracker) Fail(id string, rpcErr *codec.RPCError) bool {
	rec, ok := t.take(id)
	if !ok {
		return false
	}
	if rec.onError != nil {
		rec.onError(rpcErr)
	}
	t.sink.Publish(events.NewErrorEvent(rec.sessionID, "outbound", rpcErr, "outbound request failed: "+rec.method))
	t.sink.Publish(events.NewOutboundResolvedEvent(rec.sessionID, id, rec.method, true))
	return true
}

// HasPending reports whether id is still outstanding, for tests.
func (t *Tracker) HasPending(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.records[id]
	return ok
}

func (t *Tracker) take(id string) (*record, bool) {
	t.mu.Lock()
	rec, ok := t.records[id]
	if ok {
		delete(t.records, id)
	}
	t.mu.Unlock()
	if ok {
		rec.timer.Stop()
	}
	return rec, ok
}

// expire fires when a request's timer elapses with no response: the
// record is removed, a notifications/cancelled is best-effort sent to the
// client, and no result/error callback runs for this id ever again.
func (t *Tracker) expire(id string) {
	t.mu.Lock()
	rec, ok := t.records[id]
	if ok {
		delete(t.records, id)
	}
	t.mu.Unlock()
	if !ok {
		return
	}

	payload, err := codec.EncodeNotification("notifications/cancelled", map[string]any{
		"requestId": id,
		"reason":    "timeout",
	})
	if err == nil {
		_ = t.sender.Send(context.Background(), rec.sessionID, payload)
	}

	t.sink.Publish(events.NewOutboundTimeoutEvent(rec.sessionID, id, rec.method))
}
