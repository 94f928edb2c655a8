// Package transport implements the concrete connections a server listens
// on. The protocol engine never depends on this package; each transport
// depends on the engine only through a narrow interface (InboundHandler),
// so new transports can be added without touching internal/engine (spec
// §1, "How the server talks to the world is deliberately out of scope for
// the core logic").
package transport

import (
	"context"

	"github.com/forgemcp/mcpcore/internal/session"
)

// InboundHandler is the engine-side contract a transport drives: decode,
// dispatch, and reply to one inbound payload for a given session, and
// learn when a connection closes so its sessions can be torn down (spec
// §4.2 lifecycle reason b).
type InboundHandler interface {
	HandleInbound(ctx context.Context, binding session.TransportBinding, sessionID string, transportContext map[string]any, raw []byte) ([]byte, error)
	NotifyClosed(binding session.TransportBinding)
}
