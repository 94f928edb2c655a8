package registry

import "encoding/json"

// FrameContext is the subset of a request's frame a component handler may
// observe or act through. internal/frame's *Frame satisfies this
// structurally; registry never imports that package, which keeps the two
// packages' dependency in one direction only (frame -> registry, for the
// dynamic-registration types below).
type FrameContext interface {
	SessionID() string
	Assigns() map[string]any
	TransportMeta() map[string]any
	ClientInfo() json.RawMessage
	HasClientCapability(name string) bool
	Initialized() bool

	Notify(method string, params any) error
	RegisterTool(t Tool) error
	RegisterPrompt(p Prompt) error
	RegisterResource(r Resource) error
}
