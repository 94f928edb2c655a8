package registry

import (
	"context"
	"encoding/json"
	"testing"
)

func addTool(t *testing.T, r *Registry, name string) {
	t.Helper()
	err := r.RegisterTool(Tool{
		Name:        name,
		Description: "test tool " + name,
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler: func(ctx context.Context, args json.RawMessage, fr FrameContext) (ToolResponse, error) {
			return NewToolResponse().Text("ok").Build(), nil
		},
	})
	if err != nil {
		t.Fatalf("RegisterTool(%s): %v", name, err)
	}
}

// TestListToolsPaginationExhaustive covers P7: walking cursors to
// exhaustion yields the full sorted set with no duplicates or omissions.
func TestListToolsPaginationExhaustive(t *testing.T) {
	r := NewRegistry()
	names := []string{"charlie", "alpha", "echo", "delta", "bravo"}
	for _, n := range names {
		addTool(t, r, n)
	}

	limit := 2
	var got []string
	cursor := ""
	for i := 0; i < 10; i++ {
		out := r.ListTools(cursor, &limit)
		tools := out["tools"].([]map[string]any)
		for _, tl := range tools {
			got = append(got, tl["name"].(string))
		}
		next, ok := out["nextCursor"]
		if !ok {
			break
		}
		cursor = next.(string)
	}

	want := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestListToolsNoLimitReturnsEverything(t *testing.T) {
	r := NewRegistry()
	addTool(t, r, "b")
	addTool(t, r, "a")

	out := r.ListTools("", nil)
	if _, ok := out["nextCursor"]; ok {
		t.Error("expected no nextCursor when limit is nil")
	}
	tools := out["tools"].([]map[string]any)
	if len(tools) != 2 || tools[0]["name"] != "a" || tools[1]["name"] != "b" {
		t.Errorf("unexpected listing: %+v", tools)
	}
}
