package registry

import (
	"context"
	"fmt"

	"github.com/forgemcp/mcpcore/internal/codec"
)

func (t *Tool) descriptorWire() map[string]any {
	m := map[string]any{
		"name":        t.Name,
		"description": t.Description,
		"inputSchema": t.InputSchema,
	}
	if t.Title != "" {
		m["title"] = t.Title
	}
	if t.OutputSchema != nil {
		m["outputSchema"] = t.OutputSchema
	}
	if t.Annotations != nil {
		m["annotations"] = t.Annotations
	}
	return m
}

func (p *Prompt) descriptorWire() map[string]any {
	m := map[string]any{"name": p.Name, "description": p.Description}
	if p.Title != "" {
		m["title"] = p.Title
	}
	if p.Arguments != nil {
		m["arguments"] = p.Arguments
	}
	return m
}

func (res *Resource) descriptorWire() map[string]any {
	m := map[string]any{"name": res.Name}
	if res.URI != "" {
		m["uri"] = res.URI
	}
	if res.URITemplate != "" {
		m["uriTemplate"] = res.URITemplate
	}
	if res.Title != "" {
		m["title"] = res.Title
	}
	if res.Description != "" {
		m["description"] = res.Description
	}
	if res.MimeType != "" {
		m["mimeType"] = res.MimeType
	}
	return m
}

// ListTools implements tools/list: ascending by name, paginated.
func (r *Registry) ListTools(cursor string, limit *int) map[string]any {
	r.mu.RLock()
	items := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		items = append(items, t)
	}
	r.mu.RUnlock()

	page, next := paginate(items, func(t *Tool) string { return t.Name }, cursor, limit)
	wire := make([]map[string]any, len(page))
	for i, t := range page {
		wire[i] = t.descriptorWire()
	}
	out := map[string]any{"tools": wire}
	if next != "" {
		out["nextCursor"] = next
	}
	return out
}

// ListPrompts implements prompts/list.
func (r *Registry) ListPrompts(cursor string, limit *int) map[string]any {
	r.mu.RLock()
	items := make([]*Prompt, 0, len(r.prompts))
	for _, p := range r.prompts {
		items = append(items, p)
	}
	r.mu.RUnlock()

	page, next := paginate(items, func(p *Prompt) string { return p.Name }, cursor, limit)
	wire := make([]map[string]any, len(page))
	for i, p := range page {
		wire[i] = p.descriptorWire()
	}
	out := map[string]any{"prompts": wire}
	if next != "" {
		out["nextCursor"] = next
	}
	return out
}

// ListResources implements resources/list (non-template resources only).
func (r *Registry) ListResources(cursor string, limit *int) map[string]any {
	r.mu.RLock()
	items := make([]*Resource, 0, len(r.resources))
	for _, res := range r.resources {
		items = append(items, res)
	}
	r.mu.RUnlock()

	page, next := paginate(items, func(res *Resource) string { return res.Name }, cursor, limit)
	wire := make([]map[string]any, len(page))
	for i, res := range page {
		wire[i] = res.descriptorWire()
	}
	out := map[string]any{"resources": wire}
	if next != "" {
		out["nextCursor"] = next
	}
	return out
}

// ListResourceTemplates implements resources/templates/list.
func (r *Registry) ListResourceTemplates(cursor string, limit *int) map[string]any {
	r.mu.RLock()
	items := make([]*Resource, 0, len(r.templates))
	for _, res := range r.templates {
		items = append(items, res)
	}
	r.mu.RUnlock()

	page, next := paginate(items, func(res *Resource) string { return res.Name }, cursor, limit)
	wire := make([]map[string]any, len(page))
	for i, res := range page {
		wire[i] = res.descriptorWire()
	}
	out := map[string]any{"resourceTemplates": wire}
	if next != "" {
		out["nextCursor"] = next
	}
	return out
}

// CallTool implements tools/call: validate, invoke, shape the reply.
func (r *Registry) CallTool(ctx context.Context, name string, args []byte, fr FrameContext) (map[string]any, *codec.RPCError) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, codec.InvalidParams(fmt.Sprintf("unknown tool %q", name), nil)
	}

	if errs := t.ValidateInput(args); len(errs) > 0 {
		return nil, codec.InvalidParams("arguments failed schema validation", errs)
	}

	resp, err := t.Handler(ctx, args, fr)
	if err != nil {
		if rpcErr, ok := err.(*codec.RPCError); ok {
			return nil, rpcErr
		}
		return nil, codec.InternalError(err.Error())
	}

	if t.OutputSchema != nil && resp.StructuredContent != nil && t.ValidateOutput != nil {
		if errs := t.ValidateOutput(resp.StructuredContent); len(errs) > 0 {
			return nil, codec.InternalError(fmt.Sprintf("tool %q produced output failing its own schema", name))
		}
	}

	return resp.toWire(), nil
}

// GetPrompt implements prompts/get.
func (r *Registry) GetPrompt(ctx context.Context, name string, args []byte, fr FrameContext) (map[string]any, *codec.RPCError) {
	r.mu.RLock()
	p, ok := r.prompts[name]
	r.mu.RUnlock()
	if !ok {
		return nil, codec.InvalidParams(fmt.Sprintf("unknown prompt %q", name), nil)
	}

	if p.ValidateInput != nil {
		if errs := p.ValidateInput(args); len(errs) > 0 {
			return nil, codec.InvalidParams("arguments failed schema validation", errs)
		}
	}

	resp, err := p.Handler(ctx, args, fr)
	if err != nil {
		if rpcErr, ok := err.(*codec.RPCError); ok {
			return nil, rpcErr
		}
		return nil, codec.InternalError(err.Error())
	}
	return resp.toWire(), nil
}

// ReadResource implements resources/read: exact URI match first, then
// template matching.
func (r *Registry) ReadResource(ctx context.Context, uri string, fr FrameContext) (map[string]any, *codec.RPCError) {
	r.mu.RLock()
	for _, res := range r.resources {
		if res.URI == uri {
			handler, mimeType := res.Handler, res.MimeType
			r.mu.RUnlock()
			return r.invokeResource(ctx, handler, uri, mimeType, fr)
		}
	}
	for name, res := range r.templates {
		tmpl := r.compiledTemplates[name]
		if _, match := tmpl.Match(uri); match {
			handler, mimeType := res.Handler, res.MimeType
			r.mu.RUnlock()
			return r.invokeResource(ctx, handler, uri, mimeType, fr)
		}
	}
	r.mu.RUnlock()
	return nil, codec.ResourceNotFound(uri)
}

func (r *Registry) invokeResource(ctx context.Context, handler ResourceHandler, uri, mimeType string, fr FrameContext) (map[string]any, *codec.RPCError) {
	content, err := handler(ctx, uri, fr)
	if err != nil {
		if rpcErr, ok := err.(*codec.RPCError); ok {
			return nil, rpcErr
		}
		return nil, codec.InternalError(err.Error())
	}
	return map[string]any{"contents": []map[string]any{content.toWire(uri, mimeType)}}, nil
}

// Complete implements completion/complete, forwarding to the registered
// CompletionHandler.
func (r *Registry) Complete(ctx context.Context, ref, argument any, fr FrameContext) (map[string]any, *codec.RPCError) {
	r.mu.RLock()
	h := r.completionHandler
	r.mu.RUnlock()
	if h == nil {
		return nil, codec.MethodNotFound("completion/complete")
	}
	resp, err := h(ctx, ref, argument, fr)
	if err != nil {
		if rpcErr, ok := err.(*codec.RPCError); ok {
			return nil, rpcErr
		}
		return nil, codec.InternalError(err.Error())
	}
	return resp.toWire(), nil
}
