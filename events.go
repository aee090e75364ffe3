package shipengine

import (
	"github.com/rs/zerolog"

	"github.com/shipengine/shipengine-go/internal/events"
)

// EventType names an event kind.
type EventType = events.Type

// Event types.
const (
	EventRequestSent      = events.TypeRequestSent
	EventResponseReceived = events.TypeResponseReceived
)

// RequestSentEvent is emitted right before each attempt. Retry is the
// 0-based attempt number.
type RequestSentEvent = events.RequestSentEvent

// ResponseReceivedEvent is emitted after each attempt, before the client
// decides whether to retry.
type ResponseReceivedEvent = events.ResponseReceivedEvent

// Listener observes request lifecycle events. Methods run synchronously on
// the calling goroutine. A panicking listener does not disturb the call; the
// failure is reported once the call completes.
type Listener = events.Listener

// ListenerFuncs adapts plain functions to a Listener.
type ListenerFuncs = events.ListenerFuncs

// ListenerError describes a listener panic.
type ListenerError = events.ListenerError

// logListener writes every event to a zerolog logger.
type logListener struct {
	logger zerolog.Logger
}

// NewLogListener returns a Listener that logs each request and response.
// Successful responses are logged at debug level, failed ones at warn.
func NewLogListener(logger zerolog.Logger) Listener {
	return &logListener{logger: logger}
}

func (l *logListener) OnRequestSent(e RequestSentEvent) {
	l.logger.Debug().
		Str("event", string(e.Type)).
		Str("request_id", e.RequestID).
		Str("url", e.URL).
		Int("retry", e.Retry).
		Dur("timeout", e.Timeout).
		Msg(e.Message)
}

func (l *logListener) OnResponseReceived(e ResponseReceivedEvent) {
	ev := l.logger.Debug()
	if e.Err != nil {
		ev = l.logger.Warn().Err(e.Err)
	}
	ev.Str("event", string(e.Type)).
		Str("request_id", e.RequestID).
		Int("status", e.StatusCode).
		Int("retry", e.Retry).
		Dur("elapsed", e.Elapsed).
		Msg(e.Message)
}
