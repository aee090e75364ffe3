package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// jsonRPCVersion is the protocol version sent on every request.
const jsonRPCVersion = "2.0"

// Request is one logical RPC call supplied by an endpoint wrapper.
type Request struct {
	Method string // RPC method, e.g. "address.validate.v1"
	Params any
}

// Settings are the per-call values the engine needs. They are validated by
// the caller before Execute is invoked.
type Settings struct {
	APIKey  string
	BaseURL string
	Retries int
	Timeout time.Duration
}

// rpcRequest is the JSON-RPC request envelope.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// HTTPRequest is what the engine hands to a Transport.
type HTTPRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ID returns the JSON-RPC "id" member echoed by the server.
func (r *Response) ID() string {
	if r == nil {
		return ""
	}
	return gjson.GetBytes(r.Body, "id").Str
}

// Result returns the raw JSON-RPC "result" member, or nil when absent.
func (r *Response) Result() json.RawMessage {
	if r == nil {
		return nil
	}
	res := gjson.GetBytes(r.Body, "result")
	if !res.Exists() {
		return nil
	}
	return json.RawMessage(res.Raw)
}
