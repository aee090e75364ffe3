// Package api provides the request-execution engine for the ShipEngine
// JSON-RPC API. It builds request envelopes, dispatches attempts through a
// [Transport], classifies every outcome into the error taxonomy, and retries
// with exponential backoff where the taxonomy allows it.
//
// # Retry Behavior
//
// [Client.Execute] issues at most Settings.Retries+1 attempts, strictly one
// after another. Only rate-limit responses (HTTP 429, or an envelope whose
// error code is rate_limit_exceeded) are retried by default; [WithRetryOn]
// opts further HTTP statuses in. The delay after attempt n is
// BaseDelay * Multiplier^n capped at MaxDelay (1s, 2s, 4s, ... by default),
// raised to the server's Retry-After hint when that is larger, and never
// shorter than the previous delay.
//
// Every attempt runs under its own timeout. Cancelling the caller's context
// aborts the in-flight attempt and skips the remaining ones.
//
// # Events
//
// Each attempt is reported to an [events.Dispatcher] as a RequestSent event
// followed by a ResponseReceived event tagged with the same 0-based retry
// number.
//
// # Error Handling
//
// [Classify] maps transport failures, HTTP statuses and JSON-RPC error
// envelopes onto [apierrors.Error]. It is pure: classifying the same outcome
// twice yields equal errors.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. Multiple goroutines may call
// Execute on a single Client simultaneously.
package api
