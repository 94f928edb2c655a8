package codec

import "encoding/json"

// MessageKind discriminates the shape of a decoded Message.
type MessageKind int

const (
	KindRequest MessageKind = iota
	KindNotification
	KindResponse
	KindErrorResponse
)

// Message is a decoded JSON-RPC 2.0 message. Only the fields relevant to
// Kind are populated; it is a closed sum type in spirit, not a generic bag.
type Message struct {
	Kind   MessageKind
	ID     ID
	Method string
	Params json.RawMessage
	Result json.RawMessage
	Err    *RPCError
}

// IsRequest reports whether m has both a method and an id.
func (m Message) IsRequest() bool { return m.Kind == KindRequest }

// IsNotification reports whether m has a method and no id.
func (m Message) IsNotification() bool { return m.Kind == KindNotification }

// IsResponse reports whether m is a successful result carrying an id.
func (m Message) IsResponse() bool { return m.Kind == KindResponse }

// IsError reports whether m is an error response carrying an id.
func (m Message) IsError() bool { return m.Kind == KindErrorResponse }

// IsInitialize reports whether m is an initialize request.
func (m Message) IsInitialize() bool { return m.IsRequest() && m.Method == "initialize" }

// IsInitializedNotification reports whether m is the notifications/initialized lifecycle notification.
func (m Message) IsInitializedNotification() bool {
	return m.IsNotification() && m.Method == "notifications/initialized"
}

// IsInitializeLifecycle reports whether m is either half of the
// initialize handshake.
func (m Message) IsInitializeLifecycle() bool {
	return m.IsInitialize() || m.IsInitializedNotification()
}

// IsPing reports whether m is a ping request.
func (m Message) IsPing() bool { return m.IsRequest() && m.Method == "ping" }

// Decoded is the result of Decode: either a single Message or a Batch.
type Decoded struct {
	Batch bool
	Items []Message
}

// IsBatch reports whether the decoded payload was a JSON array.
func (d Decoded) IsBatch() bool { return d.Batch }

// Single returns the sole decoded message when the payload was not a batch.
func (d Decoded) Single() (Message, bool) {
	if d.Batch || len(d.Items) != 1 {
		return Message{}, false
	}
	return d.Items[0], true
}
