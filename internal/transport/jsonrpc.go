package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rpggio/codepad/internal/mcp"
)

// JSON-RPC 2.0 error codes. Command failures other than an unknown method
// or bad params travel as ErrServer with the *mcp.APIError in Data.
const (
	ErrParseCode      = -32700
	ErrInvalidReq     = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603
	ErrServer         = -32000
)

const jsonrpcVersion = "2.0"

// Request is one command call. Method names a dispatch table entry.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response carries either the command result or an Error.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error is the JSON-RPC error object. It also satisfies error so
// ParseRequest can return it directly.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc %d: %s", e.Code, e.Message)
}

// ParseRequest decodes a request body. Failures are returned as *Error
// with ErrParseCode for malformed JSON and ErrInvalidReq for a missing
// version or method.
func ParseRequest(body io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return Request{}, &Error{Code: ErrParseCode, Message: "parse error: " + err.Error()}
	}
	if req.JSONRPC != jsonrpcVersion {
		return Request{}, &Error{Code: ErrInvalidReq, Message: fmt.Sprintf("invalid request: jsonrpc must be %q", jsonrpcVersion)}
	}
	if req.Method == "" {
		return Request{}, &Error{Code: ErrInvalidReq, Message: "invalid request: method is required"}
	}
	return req, nil
}

// CommandError converts an error from the dispatch table into an error
// object. Anything that is not an *mcp.APIError is reported as internal.
func CommandError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	var apiErr *mcp.APIError
	if !errors.As(err, &apiErr) {
		return &Error{Code: ErrInternal, Message: err.Error()}
	}
	code := ErrServer
	switch apiErr.Code {
	case "UNKNOWN_COMMAND":
		code = ErrMethodNotFound
	case "INVALID_INPUT":
		code = ErrInvalidParams
	}
	return &Error{Code: code, Message: apiErr.Error(), Data: apiErr}
}

// WriteResult writes a success response.
func WriteResult(w http.ResponseWriter, id any, result any) {
	writeJSON(w, Response{JSONRPC: jsonrpcVersion, Result: result, ID: id})
}

// WriteError writes an error response. Errors are delivered with HTTP 200;
// the code lives in the body.
func WriteError(w http.ResponseWriter, id any, rpcErr *Error) {
	writeJSON(w, Response{JSONRPC: jsonrpcVersion, Error: rpcErr, ID: id})
}

func writeJSON(w http.ResponseWriter, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}
