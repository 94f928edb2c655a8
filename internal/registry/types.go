// Package registry implements the component registry and dispatcher (C4):
// declarative registration of tools, prompts, and resources, JSON-Schema
// argument validation, pagination, and the tool/prompt/resource/completion
// response protocol.
package registry

import (
	"context"
	"encoding/json"
)

// Kind discriminates a registered component's variant.
type Kind string

const (
	KindTool     Kind = "tool"
	KindPrompt   Kind = "prompt"
	KindResource Kind = "resource"
)

// Tool is a callable component exposed via tools/list and tools/call.
type Tool struct {
	Name           string
	Title          string
	Description    string
	InputSchema    json.RawMessage
	OutputSchema   json.RawMessage
	Annotations    map[string]any
	ValidateInput  Validator
	ValidateOutput Validator
	Handler        ToolHandler

	// Source names the package path of the registering module, for
	// diagnostics. Nothing in this module reads it; it never appears on
	// the wire.
	Source string
}

// ToolHandler executes a tool call with pre-validated arguments.
type ToolHandler func(ctx context.Context, args json.RawMessage, fr FrameContext) (ToolResponse, error)

// PromptArgument describes one templated argument a prompt accepts,
// derived from Prompt.ArgumentsSchema at registration time.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Prompt is a message-template component exposed via prompts/list and prompts/get.
type Prompt struct {
	Name            string
	Title           string
	Description     string
	ArgumentsSchema json.RawMessage
	Arguments       []PromptArgument
	ValidateInput   Validator
	Handler         PromptHandler

	Source string
}

// PromptHandler renders a prompt's messages with pre-validated arguments.
type PromptHandler func(ctx context.Context, args json.RawMessage, fr FrameContext) (PromptResponse, error)

// Resource is a readable component exposed via resources/list,
// resources/templates/list, and resources/read. Exactly one of URI or
// URITemplate must be set.
type Resource struct {
	URI         string
	URITemplate string
	Name        string
	Title       string
	Description string
	MimeType    string
	Handler     ResourceHandler

	Source string
}

// IsTemplate reports whether r is registered under a URI template rather
// than a fixed URI.
func (r Resource) IsTemplate() bool { return r.URITemplate != "" }

// ResourceHandler reads a resource for the matched URI (the literal
// requested URI, which for a template resource may differ from
// r.URITemplate).
type ResourceHandler func(ctx context.Context, uri string, fr FrameContext) (ResourceContent, error)

// Descriptor is the sum-typed view of a registered component, used by the
// Component interface so hosts may implement a type instead of building a
// struct literal.
type Descriptor struct {
	Kind     Kind
	Tool     *Tool
	Prompt   *Prompt
	Resource *Resource
}

// Component lets a host type describe itself instead of passing a Tool,
// Prompt, or Resource literal to the registry directly.
type Component interface {
	Descriptor() Descriptor
}
