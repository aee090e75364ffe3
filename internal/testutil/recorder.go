// Package testutil holds helpers shared by the package test suites.
package testutil

import (
	"sync"

	"github.com/shipengine/shipengine-go/internal/events"
)

// Recorder is an in-memory listener that keeps every event it sees, in order.
type Recorder struct {
	mu       sync.Mutex
	sent     []events.RequestSentEvent
	received []events.ResponseReceivedEvent
	sequence []events.Type
}

// OnRequestSent implements events.Listener.
func (r *Recorder) OnRequestSent(e events.RequestSentEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, e)
	r.sequence = append(r.sequence, e.Type)
}

// OnResponseReceived implements events.Listener.
func (r *Recorder) OnResponseReceived(e events.ResponseReceivedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, e)
	r.sequence = append(r.sequence, e.Type)
}

// Sent returns a copy of the recorded request events.
func (r *Recorder) Sent() []events.RequestSentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.RequestSentEvent(nil), r.sent...)
}

// Received returns a copy of the recorded response events.
func (r *Recorder) Received() []events.ResponseReceivedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.ResponseReceivedEvent(nil), r.received...)
}

// Sequence returns the event types in the order they arrived.
func (r *Recorder) Sequence() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Type(nil), r.sequence...)
}
