// Package mcpcore is the embedding surface for building an MCP server:
// register tools, prompts, and resources, wire optional request/
// notification hooks, and serve them over stdio or an in-process
// transport.
package mcpcore

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/forgemcp/mcpcore/internal/config"
	"github.com/forgemcp/mcpcore/internal/engine"
	"github.com/forgemcp/mcpcore/internal/events"
	"github.com/forgemcp/mcpcore/internal/frame"
	"github.com/forgemcp/mcpcore/internal/outbound"
	"github.com/forgemcp/mcpcore/internal/registry"
	"github.com/forgemcp/mcpcore/internal/session"
	"github.com/forgemcp/mcpcore/internal/transport"
)

// Re-exported component types, so callers never need to import
// internal/registry or internal/frame directly.
type (
	Tool               = registry.Tool
	ToolHandler        = registry.ToolHandler
	ToolResponse       = registry.ToolResponse
	Prompt             = registry.Prompt
	PromptHandler      = registry.PromptHandler
	PromptMessage      = registry.PromptMessage
	PromptResponse     = registry.PromptResponse
	Resource           = registry.Resource
	ResourceHandler    = registry.ResourceHandler
	ResourceContent    = registry.ResourceContent
	CompletionHandler  = registry.CompletionHandler
	CompletionResponse = registry.CompletionResponse
	ContentItem        = registry.ContentItem
	EmbeddedResource    = registry.EmbeddedResource
	Frame              = frame.Frame
	FrameContext       = registry.FrameContext
)

// Response builder constructors and content-item helpers, re-exported for
// convenience so callers building a tool/prompt/completion response never
// need to import internal/registry directly.
var (
	NewToolResponse       = registry.NewToolResponse
	NewPromptResponse     = registry.NewPromptResponse
	NewCompletionResponse = registry.NewCompletionResponse
	TextContent           = registry.TextContent
	ImageContent          = registry.ImageContent
	AudioContent          = registry.AudioContent
	ResourceContentItem   = registry.ResourceContentItem
	ResourceLink          = registry.ResourceLink
)

// Server is a runnable MCP server: a registry of components plus the
// engine that dispatches JSON-RPC traffic against them.
type Server struct {
	mu        sync.RWMutex
	transport activeTransport

	cfg      *config.Config
	store    *session.Store
	registry *registry.Registry
	bus      *events.Bus
	eng      *engine.Engine
}

// activeTransport is whichever concrete transport is currently running a
// Serve* loop, so engine-initiated sends (notifications, sampling/roots
// requests) reach the live connection.
type activeTransport interface {
	Send(ctx context.Context, sessionID string, payload []byte) error
}

// Option configures a Server at construction time.
type Option func(*buildState)

type buildState struct {
	cfg      *config.Config
	handlers engine.Handlers
}

// WithConfig overrides the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *buildState) { s.cfg = cfg }
}

// WithServerInfo sets the name/version advertised during initialize.
func WithServerInfo(name, version string) Option {
	return func(s *buildState) {
		s.cfg.ServerInfo = config.ServerInfo{Name: name, Version: version}
	}
}

// WithCapabilities overrides the advertised capability set.
func WithCapabilities(caps config.ServerCapabilities) Option {
	return func(s *buildState) { s.cfg.Capabilities = caps }
}

// WithRequestHandler sets the fallback for request methods the framework
// does not handle natively.
func WithRequestHandler(h func(ctx context.Context, method string, params json.RawMessage, fr *Frame) (any, error)) Option {
	return func(s *buildState) { s.handlers.HandleRequest = h }
}

// WithNotificationHandler sets the observer for notification methods the
// framework does not handle natively.
func WithNotificationHandler(h func(ctx context.Context, method string, params json.RawMessage, fr *Frame)) Option {
	return func(s *buildState) { s.handlers.HandleNotification = h }
}

// WithOnInitialize sets a hook that runs once a session completes the
// handshake, before any other request is dispatched.
func WithOnInitialize(h func(ctx context.Context, clientInfo json.RawMessage, fr *Frame)) Option {
	return func(s *buildState) { s.handlers.OnInitialize = h }
}

// New builds a Server with no tools/prompts/resources registered yet.
func New(opts ...Option) *Server {
	state := &buildState{cfg: config.NewConfig()}
	for _, opt := range opts {
		opt(state)
	}

	bus := events.NewBus()
	store := session.NewStore(state.cfg.SessionIdleTimeout(), bus)
	reg := registry.NewRegistry()
	srv := &Server{cfg: state.cfg, store: store, registry: reg, bus: bus}

	sender := senderFunc(srv.send)
	tracker := outbound.NewTracker(sender, bus, state.cfg.OutboundRequestDefaultTimeout())
	srv.eng = engine.New(state.cfg, store, reg, tracker, sender, bus, state.handlers)

	return srv
}

// senderFunc adapts a closure to engine.Sender/outbound.Sender.
type senderFunc func(ctx context.Context, sessionID string, payload []byte) error

func (f senderFunc) Send(ctx context.Context, sessionID string, payload []byte) error {
	return f(ctx, sessionID, payload)
}

func (s *Server) send(ctx context.Context, sessionID string, payload []byte) error {
	s.mu.RLock()
	t := s.transport
	s.mu.RUnlock()
	if t == nil {
		return nil
	}
	return t.Send(ctx, sessionID, payload)
}

// RegisterTool adds a statically-registered tool, visible to every session.
func (s *Server) RegisterTool(t Tool) error { return s.registry.RegisterTool(t) }

// RegisterPrompt adds a statically-registered prompt.
func (s *Server) RegisterPrompt(p Prompt) error { return s.registry.RegisterPrompt(p) }

// RegisterResource adds a statically-registered resource or resource template.
func (s *Server) RegisterResource(r Resource) error { return s.registry.RegisterResource(r) }

// SetCompletionHandler wires completion/complete (gated on the completion
// capability being advertised).
func (s *Server) SetCompletionHandler(h CompletionHandler) { s.registry.SetCompletionHandler(h) }

// Config returns the server's current configuration.
func (s *Server) Config() *config.Config { return s.cfg }

// Reconfigure hot-applies cfg.
func (s *Server) Reconfigure(cfg *config.Config) {
	s.cfg = cfg
	s.eng.Reconfigure(cfg)
}

// Events returns the server's event bus, for a monitor UI or a custom
// log sink to subscribe to.
func (s *Server) Events() *events.Bus { return s.bus }

// Sessions returns a snapshot of every live session, for a monitor UI.
func (s *Server) Sessions() []*session.Session { return s.store.Snapshot() }

// ServeStdio runs the server over newline-delimited JSON-RPC on r/w until
// ctx is cancelled or r reaches EOF. Typically called with os.Stdin/os.Stdout.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	st := transport.NewStdio(r, w, s.eng, s.bus)
	s.mu.Lock()
	s.transport = st
	s.mu.Unlock()
	return st.Run(ctx)
}

// WatchConfigFile hot-reloads the server's configuration whenever path
// changes on disk. Blocks until ctx is cancelled.
func (s *Server) WatchConfigFile(ctx context.Context, path string) error {
	return config.Watch(ctx, path, s.Reconfigure)
}

// ServeInProcess attaches an in-process transport bound to sessionID,
// useful for embedding a server in the same binary as its client (tests,
// single-process demos) without a pipe. Call Deliver on the returned
// transport to drive requests.
func (s *Server) ServeInProcess(sessionID string) *transport.InProcess {
	t := transport.NewInProcess(sessionID, s.eng)
	s.mu.Lock()
	s.transport = t
	s.mu.Unlock()
	return t
}
