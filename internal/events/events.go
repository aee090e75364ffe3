// Package events defines the request lifecycle events reported by the
// ShipEngine client and the synchronous dispatcher that delivers them.
package events

import (
	"net/http"
	"time"
)

// Type names an event kind.
type Type string

const (
	// TypeRequestSent is emitted right before an attempt is dispatched.
	TypeRequestSent Type = "request_sent"
	// TypeResponseReceived is emitted once an attempt has an outcome.
	TypeResponseReceived Type = "response_received"
)

// RequestSentEvent describes one outbound attempt.
type RequestSentEvent struct {
	Type      Type
	Timestamp time.Time
	Message   string
	RequestID string
	URL       string
	Headers   http.Header // API key redacted
	Body      []byte
	Retry     int // 0-based attempt number
	Timeout   time.Duration
}

// ResponseReceivedEvent describes the outcome of one attempt.
// StatusCode is 0 and Body is nil when the transport failed.
type ResponseReceivedEvent struct {
	Type       Type
	Timestamp  time.Time
	Message    string
	RequestID  string
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Retry      int
	Elapsed    time.Duration
	Err        error // classified error for failed attempts, nil on success
}

// Succeeded reports whether the attempt produced a usable result.
func (e ResponseReceivedEvent) Succeeded() bool {
	return e.Err == nil
}

// Listener observes request lifecycle events. Methods are invoked
// synchronously on the calling goroutine, in registration order.
type Listener interface {
	OnRequestSent(RequestSentEvent)
	OnResponseReceived(ResponseReceivedEvent)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
type ListenerFuncs struct {
	RequestSent      func(RequestSentEvent)
	ResponseReceived func(ResponseReceivedEvent)
}

// OnRequestSent implements Listener.
func (f ListenerFuncs) OnRequestSent(e RequestSentEvent) {
	if f.RequestSent != nil {
		f.RequestSent(e)
	}
}

// OnResponseReceived implements Listener.
func (f ListenerFuncs) OnResponseReceived(e ResponseReceivedEvent) {
	if f.ResponseReceived != nil {
		f.ResponseReceived(e)
	}
}
