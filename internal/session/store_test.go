package session

import (
	"testing"
	"time"

	"github.com/forgemcp/mcpcore/internal/codec"
)

func TestAttachCreatesThenReturnsExistingSession(t *testing.T) {
	st := NewStore(time.Minute, nil)

	s1 := st.Attach("conn-1", "sess-1", map[string]any{"peer": "a"})
	if s1.ID() != "sess-1" {
		t.Fatalf("ID() = %q, want sess-1", s1.ID())
	}

	s2 := st.Attach("conn-1", "sess-1", map[string]any{"peer": "b"})
	if s1 != s2 {
		t.Error("expected Attach to return the same session object")
	}
	if s2.TransportContext()["peer"] != "b" {
		t.Error("expected transport context to be refreshed")
	}
}

func TestInitializedTransitionsOnce(t *testing.T) {
	st := NewStore(time.Minute, nil)
	s := st.Attach(nil, "sess-1", nil)

	if s.Initialized() {
		t.Fatal("expected new session to start uninitialized")
	}
	st.MarkInitialized(s)
	if !s.Initialized() {
		t.Fatal("expected session to be initialized after MarkInitialized")
	}
}

func TestPendingRequestLifecycle(t *testing.T) {
	st := NewStore(time.Minute, nil)
	s := st.Attach(nil, "sess-1", nil)
	id := codec.IntID(7)

	if st.HasPendingRequest(s, id) {
		t.Fatal("expected no pending request yet")
	}
	st.TrackRequest(s, id, "tools/call")
	if !st.HasPendingRequest(s, id) {
		t.Fatal("expected pending request to be tracked")
	}

	pr, ok := st.CompleteRequest(s, id)
	if !ok {
		t.Fatal("expected CompleteRequest to find the record")
	}
	if pr.Method != "tools/call" {
		t.Errorf("Method = %q, want tools/call", pr.Method)
	}
	if st.HasPendingRequest(s, id) {
		t.Error("expected request to no longer be pending after completion")
	}
}

func TestIdleExpiryDestroysSession(t *testing.T) {
	st := NewStore(20*time.Millisecond, nil)
	st.Attach("conn-1", "sess-1", nil)

	time.Sleep(80 * time.Millisecond)

	if _, ok := st.Get("sess-1"); ok {
		t.Fatal("expected session to expire")
	}

	// A subsequent attach under the same id starts fresh (P5).
	fresh := st.Attach("conn-1", "sess-1", nil)
	if fresh.Initialized() {
		t.Error("expected fresh session to be uninitialized")
	}
}

func TestAttachResetsIdleTimer(t *testing.T) {
	st := NewStore(60*time.Millisecond, nil)
	st.Attach("conn-1", "sess-1", nil)

	time.Sleep(40 * time.Millisecond)
	st.Attach("conn-1", "sess-1", nil) // touch resets the timer
	time.Sleep(40 * time.Millisecond)

	if _, ok := st.Get("sess-1"); !ok {
		t.Fatal("expected session to survive due to timer reset")
	}
}

func TestNotifyTransportClosedDestroysBoundSessions(t *testing.T) {
	st := NewStore(time.Minute, nil)
	st.Attach("conn-1", "sess-1", nil)
	st.Attach("conn-1", "sess-2", nil)
	st.Attach("conn-2", "sess-3", nil)

	st.NotifyTransportClosed("conn-1")

	if _, ok := st.Get("sess-1"); ok {
		t.Error("expected sess-1 destroyed")
	}
	if _, ok := st.Get("sess-2"); ok {
		t.Error("expected sess-2 destroyed")
	}
	if _, ok := st.Get("sess-3"); !ok {
		t.Error("expected sess-3 to survive, bound to a different transport")
	}
}

func TestDestroyStopsTimerAndRemovesSession(t *testing.T) {
	st := NewStore(time.Minute, nil)
	st.Attach(nil, "sess-1", nil)
	st.Destroy("sess-1")

	if _, ok := st.Get("sess-1"); ok {
		t.Fatal("expected session to be removed")
	}
}
