package codec

import (
	"encoding/json"
	"testing"
)

func TestDecodeRequest(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	d, rpcErr := Decode(raw)
	if rpcErr != nil {
		t.Fatalf("Decode: %v", rpcErr)
	}
	m, ok := d.Single()
	if !ok {
		t.Fatal("expected single message")
	}
	if !m.IsRequest() || !m.IsPing() {
		t.Errorf("expected ping request, got %+v", m)
	}
	if m.ID.IsString() {
		t.Error("expected integer id")
	}
	if m.ID.String() != "1" {
		t.Errorf("ID.String() = %q, want 1", m.ID.String())
	}
}

func TestDecodeNotification(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	d, rpcErr := Decode(raw)
	if rpcErr != nil {
		t.Fatalf("Decode: %v", rpcErr)
	}
	m, _ := d.Single()
	if !m.IsNotification() || !m.IsInitializeLifecycle() {
		t.Errorf("expected initialized lifecycle notification, got %+v", m)
	}
}

func TestDecodeMissingJSONRPCVersion(t *testing.T) {
	raw := []byte(`{"id":1,"method":"ping"}`)
	_, rpcErr := Decode(raw)
	if rpcErr == nil || rpcErr.Code != CodeInvalidRequest {
		t.Fatalf("expected invalid request error, got %v", rpcErr)
	}
}

func TestDecodeEmptyBatchIsInvalidRequest(t *testing.T) {
	_, rpcErr := Decode([]byte(`[]`))
	if rpcErr == nil || rpcErr.Code != CodeInvalidRequest {
		t.Fatalf("expected invalid request for empty batch, got %v", rpcErr)
	}
}

func TestDecodeBatchPreservesOrder(t *testing.T) {
	raw := []byte(`[
		{"jsonrpc":"2.0","id":1,"method":"ping"},
		{"jsonrpc":"2.0","method":"notifications/progress","params":{}},
		{"jsonrpc":"2.0","id":"x","method":"tools/list"}
	]`)
	d, rpcErr := Decode(raw)
	if rpcErr != nil {
		t.Fatalf("Decode: %v", rpcErr)
	}
	if !d.IsBatch() || len(d.Items) != 3 {
		t.Fatalf("expected batch of 3, got %+v", d)
	}
	if d.Items[0].Method != "ping" || d.Items[1].Method != "notifications/progress" || d.Items[2].Method != "tools/list" {
		t.Errorf("batch order not preserved: %+v", d.Items)
	}
}

func TestIDRoundTripPreservesType(t *testing.T) {
	raw := []byte(`{"jsonrpc":"2.0","id":"abc","method":"ping"}`)
	d, rpcErr := Decode(raw)
	if rpcErr != nil {
		t.Fatalf("Decode: %v", rpcErr)
	}
	m, _ := d.Single()
	if !m.ID.IsString() {
		t.Fatal("expected string id")
	}

	out, err := EncodeResponse(m.ID, map[string]any{})
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	var decoded struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(decoded.ID) != `"abc"` {
		t.Errorf("re-encoded id = %s, want \"abc\"", decoded.ID)
	}
}

func TestEncodeRequestAndDecodeBack(t *testing.T) {
	raw, err := EncodeRequest("sampling/createMessage", map[string]any{"messages": []any{}}, StringID("req-1"))
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	d, rpcErr := Decode(raw)
	if rpcErr != nil {
		t.Fatalf("Decode: %v", rpcErr)
	}
	m, _ := d.Single()
	if !m.IsRequest() || m.Method != "sampling/createMessage" {
		t.Errorf("unexpected message: %+v", m)
	}
	if !m.ID.Equal(StringID("req-1")) {
		t.Errorf("ID = %v, want req-1", m.ID)
	}
}

func TestEncodeBatch(t *testing.T) {
	a, _ := EncodeResponse(IntID(1), map[string]any{})
	b, _ := EncodeResponse(IntID(2), map[string]any{})
	out := EncodeBatch([][]byte{a, b})

	var items []json.RawMessage
	if err := json.Unmarshal(out, &items); err != nil {
		t.Fatalf("batch output not a JSON array: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
}
