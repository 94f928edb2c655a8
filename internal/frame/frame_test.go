package frame

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/forgemcp/mcpcore/internal/registry"
)

type recordingDispatcher struct {
	notified    []string
	registered  []registry.Tool
	samplingErr error
}

func (d *recordingDispatcher) Notify(sessionID, method string, params any) error {
	d.notified = append(d.notified, method)
	return nil
}

func (d *recordingDispatcher) SendSampling(ctx context.Context, sessionID string, messages any, opts RequestOptions) (json.RawMessage, error) {
	if d.samplingErr != nil {
		return nil, d.samplingErr
	}
	return json.RawMessage(`{"ok":true}`), nil
}

func (d *recordingDispatcher) SendRoots(ctx context.Context, sessionID string, opts RequestOptions) (json.RawMessage, error) {
	return json.RawMessage(`{"roots":[]}`), nil
}

func (d *recordingDispatcher) RegisterDynamicTool(sessionID string, t registry.Tool) error {
	d.registered = append(d.registered, t)
	return nil
}

func (d *recordingDispatcher) RegisterDynamicPrompt(sessionID string, p registry.Prompt) error {
	return nil
}

func (d *recordingDispatcher) RegisterDynamicResource(sessionID string, r registry.Resource) error {
	return nil
}

func TestFrameSatisfiesRegistryFrameContext(t *testing.T) {
	var _ registry.FrameContext = New("sess-1", nil, nil, nil, "2025-03-26", true, &recordingDispatcher{})
}

func TestFrameNotifyDelegatesToDispatcher(t *testing.T) {
	d := &recordingDispatcher{}
	fr := New("sess-1", nil, nil, nil, "2025-03-26", true, d)

	if err := fr.Notify("notifications/progress", map[string]any{"progress": 1}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(d.notified) != 1 || d.notified[0] != "notifications/progress" {
		t.Errorf("unexpected notified calls: %v", d.notified)
	}
}

func TestFrameWithRequestDoesNotMutateOriginal(t *testing.T) {
	fr := New("sess-1", nil, nil, nil, "2025-03-26", true, &recordingDispatcher{})
	if _, ok := fr.CurrentRequest(); ok {
		t.Fatal("expected no request on a fresh frame")
	}

	withReq := fr.WithRequest(Request{Method: "tools/call"})
	if _, ok := fr.CurrentRequest(); ok {
		t.Error("expected original frame to remain without a request")
	}
	req, ok := withReq.CurrentRequest()
	if !ok || req.Method != "tools/call" {
		t.Errorf("unexpected request on copy: %+v", req)
	}
}

func TestFrameSetAssignIsVisibleToSameFrame(t *testing.T) {
	fr := New("sess-1", nil, nil, nil, "2025-03-26", true, &recordingDispatcher{})
	fr.SetAssign("user", "alice")
	if fr.Assigns()["user"] != "alice" {
		t.Error("expected assign to be visible via Assigns()")
	}
}

func TestFrameHasClientCapability(t *testing.T) {
	caps := map[string]json.RawMessage{"sampling": json.RawMessage(`{}`)}
	fr := New("sess-1", nil, nil, caps, "2025-03-26", true, &recordingDispatcher{})
	if !fr.HasClientCapability("sampling") {
		t.Error("expected sampling capability to be present")
	}
	if fr.HasClientCapability("roots") {
		t.Error("expected roots capability to be absent")
	}
}

func TestFrameSendSamplingPropagatesError(t *testing.T) {
	d := &recordingDispatcher{samplingErr: errors.New("no sampling capability")}
	fr := New("sess-1", nil, nil, nil, "2025-03-26", true, d)

	_, err := fr.SendSampling(context.Background(), []any{}, RequestOptions{})
	if err == nil {
		t.Fatal("expected error to propagate from dispatcher")
	}
}

func TestFrameRegisterToolDelegates(t *testing.T) {
	d := &recordingDispatcher{}
	fr := New("sess-1", nil, nil, nil, "2025-03-26", true, d)

	tool := registry.Tool{Name: "dynamic"}
	if err := fr.RegisterTool(tool); err != nil {
		t.Fatalf("RegisterTool: %v", err)
	}
	if len(d.registered) != 1 || d.registered[0].Name != "dynamic" {
		t.Errorf("unexpected registered tools: %+v", d.registered)
	}
}
