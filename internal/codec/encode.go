package codec

import (
	"bytes"
	"encoding/json"
)

// wireOut is the encode-side envelope. Using *ID means the id field is
// included only when explicitly set (requests/responses), never for
// notifications, without relying on ID's own zero value.
type wireOut struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      *ID       `json:"id,omitempty"`
	Method  string    `json:"method,omitempty"`
	Params  any       `json:"params,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// EncodeResponse encodes a successful JSON-RPC response.
func EncodeResponse(id ID, result any) ([]byte, error) {
	return json.Marshal(wireOut{JSONRPC: "2.0", ID: &id, Result: result})
}

// EncodeError encodes a JSON-RPC error response.
func EncodeError(id ID, rpcErr *RPCError) ([]byte, error) {
	return json.Marshal(wireOut{JSONRPC: "2.0", ID: &id, Error: rpcErr})
}

// EncodeNotification encodes a JSON-RPC notification (no id).
func EncodeNotification(method string, params any) ([]byte, error) {
	return json.Marshal(wireOut{JSONRPC: "2.0", Method: method, Params: params})
}

// EncodeRequest encodes a JSON-RPC request with a server-assigned id, used
// by the outbound-request tracker for server-initiated requests.
func EncodeRequest(method string, params any, id ID) ([]byte, error) {
	return json.Marshal(wireOut{JSONRPC: "2.0", Method: method, Params: params, ID: &id})
}

// EncodeBatch joins pre-encoded messages into a single JSON array, the
// wire shape for a batch reply.
func EncodeBatch(parts [][]byte) []byte {
	if len(parts) == 0 {
		return nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, p := range parts {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(p)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// Codec is a thin, stateless wrapper over the package-level encode/decode
// functions, kept so callers can depend on an interface-shaped value in
// tests rather than free functions.
type Codec struct{}

// Decode delegates to the package-level Decode.
func (Codec) Decode(data []byte) (Decoded, *RPCError) { return Decode(data) }

// EncodeResponse delegates to the package-level EncodeResponse.
func (Codec) EncodeResponse(id ID, result any) ([]byte, error) { return EncodeResponse(id, result) }

// EncodeError delegates to the package-level EncodeError.
func (Codec) EncodeError(id ID, rpcErr *RPCError) ([]byte, error) { return EncodeError(id, rpcErr) }

// EncodeNotification delegates to the package-level EncodeNotification.
func (Codec) EncodeNotification(method string, params any) ([]byte, error) {
	return EncodeNotification(method, params)
}

// EncodeRequest delegates to the package-level EncodeRequest.
func (Codec) EncodeRequest(method string, params any, id ID) ([]byte, error) {
	return EncodeRequest(method, params, id)
}
