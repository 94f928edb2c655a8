package registry

import (
	"context"
	"fmt"
	"sync"
)

// Registry holds every statically registered tool, prompt, and resource.
// It is read-only after registration except for the per-session overlay
// built by engine: dynamic registrations made from a frame live in that
// session's overlay and never affect other sessions.
type Registry struct {
	mu sync.RWMutex

	tools     map[string]*Tool
	prompts   map[string]*Prompt
	resources map[string]*Resource // static, keyed by Name
	templates map[string]*Resource // URI-templated, keyed by Name

	compiledTemplates map[string]*Template

	completionHandler CompletionHandler
}

// CompletionHandler answers completion/complete. The registry has no
// per-component completer model; a single handler serves every
// completion request, however the reference is resolved.
type CompletionHandler func(ctx context.Context, ref any, argument any, fr FrameContext) (CompletionResponse, error)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:             make(map[string]*Tool),
		prompts:           make(map[string]*Prompt),
		resources:         make(map[string]*Resource),
		templates:         make(map[string]*Resource),
		compiledTemplates: make(map[string]*Template),
	}
}

// RegisterTool adds a tool. A nil InputSchema is rejected; if
// ValidateInput is nil, one is compiled from InputSchema automatically.
func (r *Registry) RegisterTool(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("registry: tool name must not be empty")
	}
	if t.InputSchema == nil {
		return fmt.Errorf("registry: tool %q: input_schema is required", t.Name)
	}
	if t.Handler == nil {
		return fmt.Errorf("registry: tool %q: handler is required", t.Name)
	}
	if t.ValidateInput == nil {
		v, err := CompileValidator(t.InputSchema)
		if err != nil {
			return fmt.Errorf("registry: tool %q: compiling input schema: %w", t.Name, err)
		}
		t.ValidateInput = v
	}
	if t.OutputSchema != nil && t.ValidateOutput == nil {
		v, err := CompileValidator(t.OutputSchema)
		if err != nil {
			return fmt.Errorf("registry: tool %q: compiling output schema: %w", t.Name, err)
		}
		t.ValidateOutput = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("registry: tool %q already registered", t.Name)
	}
	r.tools[t.Name] = &t
	return nil
}

// RegisterPrompt adds a prompt, deriving Arguments from ArgumentsSchema
// when the caller did not set Arguments explicitly.
func (r *Registry) RegisterPrompt(p Prompt) error {
	if p.Name == "" {
		return fmt.Errorf("registry: prompt name must not be empty")
	}
	if p.Handler == nil {
		return fmt.Errorf("registry: prompt %q: handler is required", p.Name)
	}
	if p.ArgumentsSchema != nil {
		if p.ValidateInput == nil {
			v, err := CompileValidator(p.ArgumentsSchema)
			if err != nil {
				return fmt.Errorf("registry: prompt %q: compiling arguments schema: %w", p.Name, err)
			}
			p.ValidateInput = v
		}
		if p.Arguments == nil {
			args, err := derivePromptArguments(p.ArgumentsSchema)
			if err != nil {
				return fmt.Errorf("registry: prompt %q: deriving arguments: %w", p.Name, err)
			}
			p.Arguments = args
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.prompts[p.Name]; exists {
		return fmt.Errorf("registry: prompt %q already registered", p.Name)
	}
	r.prompts[p.Name] = &p
	return nil
}

// RegisterResource adds a resource. Exactly one of URI or URITemplate
// must be set.
func (r *Registry) RegisterResource(res Resource) error {
	if res.Name == "" {
		return fmt.Errorf("registry: resource name must not be empty")
	}
	if res.Handler == nil {
		return fmt.Errorf("registry: resource %q: handler is required", res.Name)
	}
	hasURI := res.URI != ""
	hasTemplate := res.URITemplate != ""
	if hasURI == hasTemplate {
		return fmt.Errorf("registry: resource %q: exactly one of uri or uri_template must be set", res.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if hasTemplate {
		if _, exists := r.templates[res.Name]; exists {
			return fmt.Errorf("registry: resource template %q already registered", res.Name)
		}
		r.templates[res.Name] = &res
		r.compiledTemplates[res.Name] = CompileTemplate(res.URITemplate)
		return nil
	}
	if _, exists := r.resources[res.Name]; exists {
		return fmt.Errorf("registry: resource %q already registered", res.Name)
	}
	r.resources[res.Name] = &res
	return nil
}

// RegisterComponent dispatches to RegisterTool/RegisterPrompt/RegisterResource
// based on the component's Descriptor.
func (r *Registry) RegisterComponent(c Component) error {
	d := c.Descriptor()
	switch d.Kind {
	case KindTool:
		if d.Tool == nil {
			return fmt.Errorf("registry: component descriptor Kind=tool has nil Tool")
		}
		return r.RegisterTool(*d.Tool)
	case KindPrompt:
		if d.Prompt == nil {
			return fmt.Errorf("registry: component descriptor Kind=prompt has nil Prompt")
		}
		return r.RegisterPrompt(*d.Prompt)
	case KindResource:
		if d.Resource == nil {
			return fmt.Errorf("registry: component descriptor Kind=resource has nil Resource")
		}
		return r.RegisterResource(*d.Resource)
	default:
		return fmt.Errorf("registry: unknown component kind %q", d.Kind)
	}
}

// SetCompletionHandler installs the hook invoked by completion/complete.
func (r *Registry) SetCompletionHandler(h CompletionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completionHandler = h
}

// Merged returns a new Registry combining r with overlay, overlay entries
// winning on name collision. Used to splice a session's dynamic
// registrations on top of the static registry at list/dispatch time
// without mutating either.
func (r *Registry) Merged(overlay *Registry) *Registry {
	if overlay == nil {
		return r
	}
	out := NewRegistry()
	r.mu.RLock()
	for k, v := range r.tools {
		out.tools[k] = v
	}
	for k, v := range r.prompts {
		out.prompts[k] = v
	}
	for k, v := range r.resources {
		out.resources[k] = v
	}
	for k, v := range r.templates {
		out.templates[k] = v
	}
	for k, v := range r.compiledTemplates {
		out.compiledTemplates[k] = v
	}
	out.completionHandler = r.completionHandler
	r.mu.RUnlock()

	overlay.mu.RLock()
	for k, v := range overlay.tools {
		out.tools[k] = v
	}
	for k, v := range overlay.prompts {
		out.prompts[k] = v
	}
	for k, v := range overlay.resources {
		out.resources[k] = v
	}
	for k, v := range overlay.templates {
		out.templates[k] = v
	}
	for k, v := range overlay.compiledTemplates {
		out.compiledTemplates[k] = v
	}
	if overlay.completionHandler != nil {
		out.completionHandler = overlay.completionHandler
	}
	overlay.mu.RUnlock()

	return out
}
