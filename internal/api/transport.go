package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 10 << 20

// Transport performs a single HTTP round trip. The per-attempt timeout is
// carried by ctx. Implementations must be safe for concurrent use.
type Transport interface {
	Do(ctx context.Context, req *HTTPRequest) (*Response, error)
}

// HTTPTransport is a Transport backed by an *http.Client.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client. A nil client uses a fresh http.Client with
// no client-level timeout, so the engine's per-attempt deadline governs.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{client: client}
}

// HTTPClient returns the underlying client.
func (t *HTTPTransport) HTTPClient() *http.Client {
	return t.client
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, req *HTTPRequest) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
