package codec

import (
	"bytes"
	"encoding/json"
)

// wireIn is the decode-side envelope. Fields are json.RawMessage so a
// present-but-null key (id:null) is distinguishable from an absent key
// (no id field at all) — the distinction classification depends on.
type wireIn struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// Decode parses a single JSON-RPC message or a batch (JSON array) of them.
func Decode(data []byte) (Decoded, *RPCError) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Decoded{}, ParseError("empty message")
	}

	if data[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return Decoded{}, ParseError(err.Error())
		}
		if len(raws) == 0 {
			return Decoded{}, InvalidRequest("batch must not be empty")
		}
		items := make([]Message, 0, len(raws))
		for _, raw := range raws {
			m, rpcErr := decodeOne(raw)
			if rpcErr != nil {
				return Decoded{}, rpcErr
			}
			items = append(items, m)
		}
		return Decoded{Batch: true, Items: items}, nil
	}

	m, rpcErr := decodeOne(data)
	if rpcErr != nil {
		return Decoded{}, rpcErr
	}
	return Decoded{Items: []Message{m}}, nil
}

func decodeOne(data []byte) (Message, *RPCError) {
	var w wireIn
	if err := json.Unmarshal(data, &w); err != nil {
		return Message{}, ParseError(err.Error())
	}
	if w.JSONRPC != "2.0" {
		return Message{}, InvalidRequest(`missing "jsonrpc": "2.0"`)
	}

	hasID := w.ID != nil
	hasMethod := w.Method != ""
	hasResult := w.Result != nil
	hasError := w.Error != nil

	var id ID
	if hasID {
		if err := json.Unmarshal(w.ID, &id); err != nil {
			return Message{}, InvalidRequest("invalid id: " + err.Error())
		}
	}

	switch {
	case hasMethod && hasID:
		return Message{Kind: KindRequest, ID: id, Method: w.Method, Params: w.Params}, nil
	case hasMethod && !hasID:
		return Message{Kind: KindNotification, Method: w.Method, Params: w.Params}, nil
	case hasID && hasError:
		return Message{Kind: KindErrorResponse, ID: id, Err: w.Error}, nil
	case hasID && hasResult:
		return Message{Kind: KindResponse, ID: id, Result: w.Result}, nil
	default:
		return Message{}, InvalidRequest("message is neither a request, a notification, nor a response")
	}
}
