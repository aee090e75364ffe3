package events

import (
	"errors"
	"fmt"
)

// ListenerError records a listener that panicked while handling an event.
type ListenerError struct {
	Event Type
	Index int // position of the listener in registration order
	Value any // recovered panic value
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %d panicked on %s: %v", e.Index, e.Event, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *ListenerError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Dispatcher fans events out to an ordered list of listeners for a single
// logical call. A panicking listener is recorded and skipped; delivery to the
// remaining listeners and the caller's control flow continue unaffected.
//
// A Dispatcher is not safe for concurrent use; create one per call.
type Dispatcher struct {
	listeners []Listener
	failures  []error
}

// NewDispatcher creates a dispatcher. Nil listeners are dropped.
func NewDispatcher(listeners ...Listener) *Dispatcher {
	d := &Dispatcher{listeners: make([]Listener, 0, len(listeners))}
	for _, l := range listeners {
		if l != nil {
			d.listeners = append(d.listeners, l)
		}
	}
	return d
}

// Len returns the number of registered listeners.
func (d *Dispatcher) Len() int {
	if d == nil {
		return 0
	}
	return len(d.listeners)
}

// RequestSent delivers e to every listener.
func (d *Dispatcher) RequestSent(e RequestSentEvent) {
	if d == nil {
		return
	}
	for i, l := range d.listeners {
		d.guard(TypeRequestSent, i, func() { l.OnRequestSent(e) })
	}
}

// ResponseReceived delivers e to every listener.
func (d *Dispatcher) ResponseReceived(e ResponseReceivedEvent) {
	if d == nil {
		return
	}
	for i, l := range d.listeners {
		d.guard(TypeResponseReceived, i, func() { l.OnResponseReceived(e) })
	}
}

// Err returns the listener failures collected so far, or nil.
func (d *Dispatcher) Err() error {
	if d == nil || len(d.failures) == 0 {
		return nil
	}
	return errors.Join(d.failures...)
}

func (d *Dispatcher) guard(event Type, index int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.failures = append(d.failures, &ListenerError{Event: event, Index: index, Value: r})
		}
	}()
	fn()
}
