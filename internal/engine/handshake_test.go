package engine

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/forgemcp/mcpcore/internal/codec"
	"github.com/forgemcp/mcpcore/internal/config"
	"github.com/forgemcp/mcpcore/internal/outbound"
	"github.com/forgemcp/mcpcore/internal/registry"
	"github.com/forgemcp/mcpcore/internal/session"
)

type recordingSender struct {
	mu   sync.Mutex
	sent [][]byte
}

func (s *recordingSender) Send(ctx context.Context, sessionID string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, payload)
	return nil
}

func newTestEngine(cfg *config.Config) (*Engine, *recordingSender) {
	sender := &recordingSender{}
	store := session.NewStore(cfg.SessionIdleTimeout(), nil)
	reg := registry.NewRegistry()
	tracker := outbound.NewTracker(sender, nil, cfg.OutboundRequestDefaultTimeout())
	return New(cfg, store, reg, tracker, sender, nil, Handlers{}), sender
}

func decodeReply(t *testing.T, raw []byte) codec.Message {
	t.Helper()
	d, rpcErr := codec.Decode(raw)
	if rpcErr != nil {
		t.Fatalf("decode reply: %v", rpcErr)
	}
	msg, ok := d.Single()
	if !ok {
		t.Fatalf("expected a single reply message, got batch=%v items=%d", d.Batch, len(d.Items))
	}
	return msg
}

// TestHandshakeGatingRejectsRequest is P1: a request method other than
// initialize/ping before notifications/initialized gets -32600.
func TestHandshakeGatingRejectsRequest(t *testing.T) {
	eng, _ := newTestEngine(config.NewConfig())
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, raw)
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	msg := decodeReply(t, out)
	if !msg.IsError() {
		t.Fatal("expected an error reply")
	}
	if msg.Err.Code != codec.CodeInvalidRequest {
		t.Errorf("code = %d, want %d", msg.Err.Code, codec.CodeInvalidRequest)
	}
}

// TestHandshakeGatingDropsNotification is P1's notification half: a
// non-lifecycle notification before initialize produces no reply.
func TestHandshakeGatingDropsNotification(t *testing.T) {
	eng, sender := newTestEngine(config.NewConfig())
	raw := []byte(`{"jsonrpc":"2.0","method":"notifications/progress","params":{}}`)

	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, raw)
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if out != nil {
		t.Errorf("expected no reply bytes, got %s", out)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no engine-initiated sends, got %d", len(sender.sent))
	}
}

// TestInitializeNegotiatesSupportedVersion is P2.
func TestInitializeNegotiatesSupportedVersion(t *testing.T) {
	eng, _ := newTestEngine(config.NewConfig())
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"probe"}}}`)

	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, raw)
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	msg := decodeReply(t, out)
	if !msg.IsResponse() {
		t.Fatalf("expected a successful response, got error %v", msg.Err)
	}
	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := json.Unmarshal(msg.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocolVersion = %q, want the requested supported version", result.ProtocolVersion)
	}
}

// TestInitializeFallsBackToNewestVersion is P2's other branch: an
// unsupported client version yields the server's newest supported version.
func TestInitializeFallsBackToNewestVersion(t *testing.T) {
	eng, _ := newTestEngine(config.NewConfig())
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"1999-01-01","capabilities":{},"clientInfo":{}}}`)

	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, raw)
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	msg := decodeReply(t, out)
	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := json.Unmarshal(msg.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.ProtocolVersion != config.DefaultProtocolVersion {
		t.Errorf("protocolVersion = %q, want %q", result.ProtocolVersion, config.DefaultProtocolVersion)
	}
}

// TestIdRoundTripInteger and TestIdRoundTripString are P3: ping (which
// bypasses handshake gating) echoes back the id with its original JSON type.
func TestIdRoundTripInteger(t *testing.T) {
	eng, _ := newTestEngine(config.NewConfig())
	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, []byte(`{"jsonrpc":"2.0","id":42,"method":"ping"}`))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if !json.Valid(out) {
		t.Fatalf("invalid JSON: %s", out)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(out, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["id"]) != "42" {
		t.Errorf("id = %s, want the bare integer 42", raw["id"])
	}
}

func TestIdRoundTripString(t *testing.T) {
	eng, _ := newTestEngine(config.NewConfig())
	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, []byte(`{"jsonrpc":"2.0","id":"abc","method":"ping"}`))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(out, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["id"]) != `"abc"` {
		t.Errorf("id = %s, want the quoted string \"abc\"", raw["id"])
	}
}

// TestCapabilityGatingLogging and TestCapabilityGatingCompletion are P8:
// both methods are method_not_found unless their capability is advertised.
func TestCapabilityGatingLogging(t *testing.T) {
	eng, _ := newTestEngine(config.NewConfig())
	initializeSession(t, eng, "sess-1")

	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, []byte(`{"jsonrpc":"2.0","id":2,"method":"logging/setLevel","params":{"level":"info"}}`))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	msg := decodeReply(t, out)
	if !msg.IsError() || msg.Err.Code != codec.CodeMethodNotFound {
		t.Fatalf("expected method_not_found, got %+v", msg)
	}
}

func TestCapabilityGatingCompletion(t *testing.T) {
	eng, _ := newTestEngine(config.NewConfig())
	initializeSession(t, eng, "sess-1")

	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, []byte(`{"jsonrpc":"2.0","id":2,"method":"completion/complete","params":{"ref":{},"argument":{}}}`))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	msg := decodeReply(t, out)
	if !msg.IsError() || msg.Err.Code != codec.CodeMethodNotFound {
		t.Fatalf("expected method_not_found, got %+v", msg)
	}
}

func TestCapabilityGatingLoggingAllowedWhenAdvertised(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Capabilities.Logging = &config.Capability{}
	eng, _ := newTestEngine(cfg)
	initializeSession(t, eng, "sess-1")

	out, err := eng.HandleInbound(context.Background(), "conn-1", "sess-1", nil, []byte(`{"jsonrpc":"2.0","id":2,"method":"logging/setLevel","params":{"level":"info"}}`))
	if err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	msg := decodeReply(t, out)
	if msg.IsError() {
		t.Fatalf("expected success, got error %+v", msg.Err)
	}
}

// initializeSession drives a minimal handshake (initialize +
// notifications/initialized) on eng for sessionID.
func initializeSession(t *testing.T, eng *Engine, sessionID string) {
	t.Helper()
	_, err := eng.HandleInbound(context.Background(), "conn-1", sessionID, nil,
		[]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{}}}`))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	_, err = eng.HandleInbound(context.Background(), "conn-1", sessionID, nil,
		[]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	if err != nil {
		t.Fatalf("notifications/initialized: %v", err)
	}
}
