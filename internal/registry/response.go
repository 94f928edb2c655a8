package registry

import "encoding/json"

// ToolResponse is the wire shape of a completed tools/call.
type ToolResponse struct {
	Content           []ContentItem
	IsError           bool
	StructuredContent json.RawMessage
}

func (r ToolResponse) toWire() map[string]any {
	out := map[string]any{"content": r.Content, "isError": r.IsError}
	if r.StructuredContent != nil {
		out["structuredContent"] = r.StructuredContent
	}
	return out
}

// ToolResponseBuilder fluently assembles a ToolResponse: successive calls
// append content items; Build materialises the wire shape.
type ToolResponseBuilder struct {
	content    []ContentItem
	isError    bool
	structured json.RawMessage
}

// NewToolResponse starts an empty, successful tool response.
func NewToolResponse() *ToolResponseBuilder { return &ToolResponseBuilder{} }

func (b *ToolResponseBuilder) Text(text string) *ToolResponseBuilder {
	b.content = append(b.content, TextContent(text))
	return b
}

func (b *ToolResponseBuilder) Image(data, mimeType string) *ToolResponseBuilder {
	b.content = append(b.content, ImageContent(data, mimeType))
	return b
}

func (b *ToolResponseBuilder) Audio(data, mimeType string) *ToolResponseBuilder {
	b.content = append(b.content, AudioContent(data, mimeType))
	return b
}

func (b *ToolResponseBuilder) Resource(r EmbeddedResource) *ToolResponseBuilder {
	b.content = append(b.content, ResourceContentItem(r))
	return b
}

func (b *ToolResponseBuilder) ResourceLink(item ContentItem) *ToolResponseBuilder {
	item.Type = "resource_link"
	b.content = append(b.content, item)
	return b
}

// Error marks the response as a domain failure: a successful wire reply
// carrying isError: true, distinct from returning a Go error from the
// handler.
func (b *ToolResponseBuilder) Error() *ToolResponseBuilder {
	b.isError = true
	return b
}

// Structured attaches structuredContent, marshaling v to JSON.
func (b *ToolResponseBuilder) Structured(v any) *ToolResponseBuilder {
	if raw, err := json.Marshal(v); err == nil {
		b.structured = raw
	}
	return b
}

func (b *ToolResponseBuilder) Build() ToolResponse {
	return ToolResponse{Content: b.content, IsError: b.isError, StructuredContent: b.structured}
}

// PromptMessage is one element of a prompt response's messages list.
type PromptMessage struct {
	Role    string
	Content ContentItem
}

func (m PromptMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"role": m.Role, "content": m.Content})
}

// PromptResponse is the wire shape of a completed prompts/get.
type PromptResponse struct {
	Messages    []PromptMessage
	Description string
}

func (r PromptResponse) toWire() map[string]any {
	out := map[string]any{"messages": r.Messages}
	if r.Description != "" {
		out["description"] = r.Description
	}
	return out
}

// PromptResponseBuilder fluently assembles a PromptResponse.
type PromptResponseBuilder struct {
	messages    []PromptMessage
	description string
}

func NewPromptResponse() *PromptResponseBuilder { return &PromptResponseBuilder{} }

func (b *PromptResponseBuilder) Message(role string, content ContentItem) *PromptResponseBuilder {
	b.messages = append(b.messages, PromptMessage{Role: role, Content: content})
	return b
}

func (b *PromptResponseBuilder) Description(d string) *PromptResponseBuilder {
	b.description = d
	return b
}

func (b *PromptResponseBuilder) Build() PromptResponse {
	return PromptResponse{Messages: b.messages, Description: b.description}
}

// ResourceContent is what a ResourceHandler returns for a single matched
// URI; the dispatcher enriches it with uri/mimeType before it reaches the
// wire. Exactly one of Text/Blob should be set; a handler returning
// neither defaults to an empty text block.
type ResourceContent struct {
	Text        string
	Blob        []byte
	HasBlob     bool
	Name        string
	Description string
	Size        *int64
}

func (c ResourceContent) toWire(uri, mimeType string) map[string]any {
	out := map[string]any{"uri": uri}
	if mimeType != "" {
		out["mimeType"] = mimeType
	}
	if c.HasBlob {
		out["blob"] = c.Blob
	} else {
		out["text"] = c.Text
	}
	if c.Name != "" {
		out["name"] = c.Name
	}
	if c.Description != "" {
		out["description"] = c.Description
	}
	if c.Size != nil {
		out["size"] = *c.Size
	}
	return out
}

// CompletionValue is one suggested value returned from completion/complete.
type CompletionValue struct {
	Value       string
	Description string
	Label       string
}

func (v CompletionValue) MarshalJSON() ([]byte, error) {
	m := map[string]any{"value": v.Value}
	if v.Description != "" {
		m["description"] = v.Description
	}
	if v.Label != "" {
		m["label"] = v.Label
	}
	return json.Marshal(m)
}

// CompletionResponse is the wire shape of a completed completion/complete.
type CompletionResponse struct {
	Values  []CompletionValue
	Total   *int
	HasMore *bool
}

func (r CompletionResponse) toWire() map[string]any {
	out := map[string]any{"values": r.Values}
	if r.Total != nil {
		out["total"] = *r.Total
	}
	if r.HasMore != nil {
		out["hasMore"] = *r.HasMore
	}
	return out
}

// CompletionResponseBuilder fluently assembles a CompletionResponse.
type CompletionResponseBuilder struct {
	values  []CompletionValue
	total   *int
	hasMore *bool
}

func NewCompletionResponse() *CompletionResponseBuilder { return &CompletionResponseBuilder{} }

func (b *CompletionResponseBuilder) Value(v CompletionValue) *CompletionResponseBuilder {
	b.values = append(b.values, v)
	return b
}

func (b *CompletionResponseBuilder) Total(n int) *CompletionResponseBuilder {
	b.total = &n
	return b
}

func (b *CompletionResponseBuilder) HasMore(v bool) *CompletionResponseBuilder {
	b.hasMore = &v
	return b
}

func (b *CompletionResponseBuilder) Build() CompletionResponse {
	return CompletionResponse{Values: b.values, Total: b.total, HasMore: b.hasMore}
}
