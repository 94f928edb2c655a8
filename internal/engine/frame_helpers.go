package engine

import (
	"github.com/forgemcp/mcpcore/internal/codec"
	"github.com/forgemcp/mcpcore/internal/frame"
)

// toFrameRequest adapts a decoded codec.Message into the frame.Request a
// handler sees; codec.ID already satisfies frame.RequestID structurally.
func toFrameRequest(msg codec.Message) frame.Request {
	return frame.Request{ID: msg.ID, Method: msg.Method, Params: msg.Params}
}
