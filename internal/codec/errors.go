// Package codec implements the JSON-RPC 2.0 message shape used by MCP:
// decoding/encoding requests, responses, errors, notifications, and
// batches, plus the classification predicates the protocol engine
// dispatches on.
package codec

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeResourceNotFound = -32002
	CodeServerError      = -32000
)

// Kind tags the origin of an error for diagnostics. It is not part
// of the wire representation; RPCError.Kind carries a json:"-" tag, so
// it is dropped when an RPCError is marshaled.
type Kind string

const (
	KindProtocol  Kind = "protocol"
	KindTransport Kind = "transport"
	KindResource  Kind = "resource"
	KindExecution Kind = "execution"
)

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Kind    Kind            `json:"-"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NewError builds an RPCError, marshaling data when non-nil.
func NewError(kind Kind, code int, message string, data any) *RPCError {
	err := &RPCError{Code: code, Message: message, Kind: kind}
	if data != nil {
		if b, marshalErr := json.Marshal(data); marshalErr == nil {
			err.Data = b
		}
	}
	return err
}

// ParseError builds a -32700 error for malformed JSON-RPC input.
func ParseError(detail string) *RPCError {
	return NewError(KindProtocol, CodeParseError, "Parse error: "+detail, nil)
}

// InvalidRequest builds a -32600 error.
func InvalidRequest(detail string) *RPCError {
	return NewError(KindProtocol, CodeInvalidRequest, "Invalid Request: "+detail, nil)
}

// MethodNotFound builds a -32601 error.
func MethodNotFound(method string) *RPCError {
	return NewError(KindProtocol, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", method), nil)
}

// InvalidParams builds a -32602 error, optionally carrying validation errors.
func InvalidParams(detail string, validationErrors any) *RPCError {
	var data any
	if validationErrors != nil {
		data = map[string]any{"errors": validationErrors}
	}
	return NewError(KindProtocol, CodeInvalidParams, "Invalid params: "+detail, data)
}

// InternalError builds a -32603 error.
func InternalError(detail string) *RPCError {
	return NewError(KindExecution, CodeInternalError, "Internal error: "+detail, nil)
}

// ResourceNotFound builds a -32002 error for an unmatched URI.
func ResourceNotFound(uri string) *RPCError {
	return NewError(KindResource, CodeResourceNotFound, "Resource not found", map[string]string{"uri": uri})
}

// ServerError builds a generic -32000 error.
func ServerError(detail string) *RPCError {
	return NewError(KindExecution, CodeServerError, detail, nil)
}
