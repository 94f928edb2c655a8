package transport

import (
	"context"
	"sync"
)

// InProcess is an in-memory transport for tests and for embedding an
// mcpcore server directly inside a host process without a pipe. Each
// InProcess value is its own binding and its own session id: callers that
// need multiple concurrent sessions create one InProcess per session.
type InProcess struct {
	mu        sync.Mutex
	sessionID string
	engine    InboundHandler
	replies   [][]byte
}

// NewInProcess builds an in-process transport bound to sessionID.
func NewInProcess(sessionID string, engine InboundHandler) *InProcess {
	return &InProcess{sessionID: sessionID, engine: engine}
}

// Send records payload; Replies drains what has accumulated.
func (p *InProcess) Send(ctx context.Context, sessionID string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, payload)
	return nil
}

// Deliver feeds raw bytes into the engine as if they had arrived over the
// wire, returning the direct reply (if any) in addition to recording it
// via Send for any engine-initiated traffic that happened during dispatch.
func (p *InProcess) Deliver(ctx context.Context, raw []byte) ([]byte, error) {
	return p.engine.HandleInbound(ctx, p, p.sessionID, nil, raw)
}

// Replies returns and clears every payload accumulated via Send (i.e.
// engine-initiated notifications/requests, not direct replies returned by
// Deliver).
func (p *InProcess) Replies() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.replies
	p.replies = nil
	return out
}

// Close tears down the session bound to this transport.
func (p *InProcess) Close() {
	p.engine.NotifyClosed(p)
}
