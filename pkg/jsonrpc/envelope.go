// Package jsonrpc holds the JSON-RPC 2.0 envelopes exchanged with clients and
// the codec used to read and write them.
package jsonrpc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Version is the only protocol version written by the server.
const Version = mcp.JSONRPC_VERSION

// SERVER_ERROR is the application-level failure code.
const SERVER_ERROR = -32000

var (
	ErrEmptyMessage = errors.New("empty message")
	ErrInvalidJSON  = errors.New("invalid JSON")
	ErrNotObject    = errors.New("message is not a JSON object")
)

/*
Request is one inbound message. ID is nil when the member is missing or null.
Params stays raw until the method that owns it decodes it.
*/
type Request struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      *ID        `json:"id,omitempty"`
	Method  string     `json:"method"`
	Params  RawMessage `json:"params,omitempty"`
}

// wireRequest reads every member raw so a mistyped member cannot hide the id.
type wireRequest struct {
	JSONRPC RawMessage `json:"jsonrpc"`
	ID      RawMessage `json:"id"`
	Method  RawMessage `json:"method"`
	Params  RawMessage `json:"params"`
}

// RequestID returns the id to echo back, null when the request had none.
func (request *Request) RequestID() ID {
	if request == nil || request.ID == nil {
		return NullID()
	}
	return *request.ID
}

/*
Response is either a result or an error, never both. Use NewResult and
NewError to build one.
*/
type Response struct {
	JSONRPC string                   `json:"jsonrpc"`
	ID      ID                       `json:"id"`
	Result  any                      `json:"result,omitempty"`
	Error   *mcp.JSONRPCErrorDetails `json:"error,omitempty"`
}

// NewResult builds a success envelope.
func NewResult(id ID, result any) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Result:  result,
	}
}

// NewError builds an error envelope.
func NewError(id ID, code int, message string) *Response {
	details := mcp.NewJSONRPCErrorDetails(code, message, nil)
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &details,
	}
}

// IsError reports whether the envelope carries an error.
func (response *Response) IsError() bool {
	return response.Error != nil
}

/*
DecodeRequest parses a single message. Errors are short reasons fit to send
back to the client. A method that is not a string is kept as its JSON text.
*/
func DecodeRequest(raw []byte) (*Request, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmptyMessage
	}

	if !Valid(trimmed) {
		return nil, ErrInvalidJSON
	}

	if trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	var wire wireRequest
	if err := Unmarshal(trimmed, &wire); err != nil {
		return nil, ErrInvalidJSON
	}

	id, err := parseID(wire.ID)
	if err != nil {
		return nil, err
	}

	request := &Request{
		JSONRPC: Text(wire.JSONRPC),
		Method:  Text(wire.Method),
		Params:  wire.Params,
	}

	if !id.IsNil() {
		request.ID = &id
	}

	return request, nil
}

// Text renders a raw member for messages: strings unquoted, other values as
// written, absent or null as the empty string.
func Text(raw RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	if raw[0] == '"' {
		var s string
		if err := Unmarshal(raw, &s); err == nil {
			return s
		}
	}

	return string(raw)
}

// DecodeResponse parses a single response envelope.
func DecodeResponse(raw []byte) (*Response, error) {
	var response Response
	if err := Unmarshal(bytes.TrimSpace(raw), &response); err != nil {
		return nil, err
	}

	if response.Error == nil && response.Result == nil {
		return nil, fmt.Errorf("response %s has neither result nor error", response.ID.String())
	}

	return &response, nil
}

// Encode serializes an envelope without a trailing newline.
func Encode(message any) ([]byte, error) {
	return Marshal(message)
}
