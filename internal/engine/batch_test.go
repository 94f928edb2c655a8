package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/forgemcp/mcpcore/internal/config"
)

// TestBatchOrderingPreservesSubRequestOrder is P4: a batch's k responses
// appear in the same order as their originating sub-requests.
func TestBatchOrderingPreservesSubRequestOrder(t *testing.T) {
	eng, _ := newTestEngine(config.NewConfig())
	initializeSession(t, eng, "sess-1")

	batch := []byte(`[
		{"jsonrpc":"2.0","id":1,"method":"ping"},
		{"jsonrpc":"2.0","id":2,"method":"ping"},
		{"jsonrpc":"2.0","id":3,"method":"ping"}
	]`)

	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, batch)
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	var replies []json.RawMessage
	if err := json.Unmarshal(out, &replies); err != nil {
		t.Fatalf("expected a JSON array reply, got %s: %v", out, err)
	}
	if len(replies) != 3 {
		t.Fatalf("got %d replies, want 3", len(replies))
	}

	for i, want := range []string{"1", "2", "3"} {
		var r struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(replies[i], &r); err != nil {
			t.Fatalf("unmarshal reply %d: %v", i, err)
		}
		if string(r.ID) != want {
			t.Errorf("reply[%d].id = %s, want %s", i, r.ID, want)
		}
	}
}

// TestBatchMixedRequestsAndNotificationsOmitsNotificationReplies checks
// that notifications within a batch produce no reply element, while the
// requests around them still reply in order.
func TestBatchMixedRequestsAndNotificationsOmitsNotificationReplies(t *testing.T) {
	eng, _ := newTestEngine(config.NewConfig())
	initializeSession(t, eng, "sess-1")

	batch := []byte(`[
		{"jsonrpc":"2.0","id":1,"method":"ping"},
		{"jsonrpc":"2.0","method":"notifications/progress","params":{}},
		{"jsonrpc":"2.0","id":2,"method":"ping"}
	]`)

	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, batch)
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	var replies []json.RawMessage
	if err := json.Unmarshal(out, &replies); err != nil {
		t.Fatalf("expected a JSON array reply, got %s: %v", out, err)
	}
	if len(replies) != 2 {
		t.Fatalf("got %d replies, want 2", len(replies))
	}
}

// TestBatchRejectsInitialize rejects a batch containing initialize.
func TestBatchRejectsInitialize(t *testing.T) {
	eng, _ := newTestEngine(config.NewConfig())

	batch := []byte(`[
		{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}},
		{"jsonrpc":"2.0","id":2,"method":"ping"}
	]`)

	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, batch)
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	msg := decodeReply(t, out)
	if !msg.IsError() {
		t.Fatalf("expected a single error reply rejecting the batch, got %s", out)
	}
}
