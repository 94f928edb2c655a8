package outbound

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/forgemcp/mcpcore/internal/codec"
)

type fakeSender struct {
	mu   sync.Mutex
	sent [][]byte
	fail bool
}

func (f *fakeSender) Send(ctx context.Context, sessionID string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.DeadlineExceeded
	}
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeSender) lastPayload() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func TestSendSamplingResolvesBeforeTimeout(t *testing.T) {
	sender := &fakeSender{}
	tr := NewTracker(sender, nil, time.Second)

	resultCh := make(chan json.RawMessage, 1)
	id, err := tr.SendSampling(context.Background(), "sess-1", []any{"hi"}, SamplingOptions{Timeout: 200 * time.Millisecond}, func(r json.RawMessage) {
		resultCh <- r
	}, nil)
	if err != nil {
		t.Fatalf("SendSampling: %v", err)
	}

	if !tr.Resolve(id, json.RawMessage(`{"content":"hi"}`)) {
		t.Fatal("expected Resolve to find the pending request")
	}
	select {
	case r := <-resultCh:
		if string(r) != `{"content":"hi"}` {
			t.Errorf("unexpected result: %s", r)
		}
	case <-time.After(time.Second):
		t.Fatal("onResult was never called")
	}
	if tr.HasPending(id) {
		t.Error("expected request to no longer be pending after Resolve")
	}
}

// TestOutboundTimeoutFiresNoCallback is P6: after the timeout elapses with
// no response, no result/error callback runs and a notifications/cancelled
// is sent.
func TestOutboundTimeoutFiresNoCallback(t *testing.T) {
	sender := &fakeSender{}
	tr := NewTracker(sender, nil, time.Second)

	called := false
	id, err := tr.SendRoots(context.Background(), "sess-1", RootsOptions{Timeout: 30 * time.Millisecond}, func(json.RawMessage) {
		called = true
	}, func(*codec.RPCError) {
		called = true
	})
	if err != nil {
		t.Fatalf("SendRoots: %v", err)
	}

	time.Sleep(120 * time.Millisecond)

	if called {
		t.Error("expected no callback to run after timeout")
	}
	if tr.HasPending(id) {
		t.Error("expected record to be removed after timeout")
	}

	payload := sender.lastPayload()
	if payload == nil {
		t.Fatal("expected a notifications/cancelled to be sent")
	}
	d, rpcErr := codec.Decode(payload)
	if rpcErr != nil {
		t.Fatalf("decode cancelled notification: %v", rpcErr)
	}
	msg, _ := d.Single()
	if msg.Method != "notifications/cancelled" {
		t.Errorf("method = %q, want notifications/cancelled", msg.Method)
	}

	// A late Resolve for the same id must be a no-op.
	if tr.Resolve(id, json.RawMessage(`{}`)) {
		t.Error("expected Resolve to report false for an already-timed-out id")
	}
}

func TestFailInvokesOnErrorNotOnResult(t *testing.T) {
	sender := &fakeSender{}
	tr := NewTracker(sender, nil, time.Second)

	var gotErr *codec.RPCError
	resultCalled := false
	id, err := tr.SendSampling(context.Background(), "sess-1", []any{}, SamplingOptions{Timeout: time.Second}, func(json.RawMessage) {
		resultCalled = true
	}, func(e *codec.RPCError) {
		gotErr = e
	})
	if err != nil {
		t.Fatalf("SendSampling: %v", err)
	}

	rpcErr := codec.ServerError("model unavailable")
	if !tr.Fail(id, rpcErr) {
		t.Fatal("expected Fail to find the pending request")
	}
	if resultCalled {
		t.Error("onResult must not be called on Fail")
	}
	if gotErr != rpcErr {
		t.Error("expected onError to receive the same RPCError")
	}
}

func TestSendFailsWhenSenderErrors(t *testing.T) {
	sender := &fakeSender{fail: true}
	tr := NewTracker(sender, nil, time.Second)

	id, err := tr.SendRoots(context.Background(), "sess-1", RootsOptions{}, nil, nil)
	if err == nil {
		t.Fatal("expected error when sender fails")
	}
	if id != "" {
		t.Errorf("expected empty id on failure, got %q", id)
	}
}
