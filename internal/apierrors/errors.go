// Package apierrors provides the error taxonomy shared by the ShipEngine client.
package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrValidation matches any error of TypeValidation.
	ErrValidation = errors.New("validation failed")

	// ErrRateLimited matches rate_limit_exceeded errors.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrTimeout matches attempts that ran past the configured timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrCancelled matches calls aborted by context cancellation.
	ErrCancelled = errors.New("request cancelled")

	// ErrUnauthorized matches rejected API keys.
	ErrUnauthorized = errors.New("invalid or expired API key")
)

// Source identifies where an error originated.
type Source string

const (
	// SourceShipEngine is the ShipEngine API itself.
	SourceShipEngine Source = "shipengine"
	// SourceCarrier is a carrier reached through ShipEngine.
	SourceCarrier Source = "carrier"
	// SourceOrderSource is an order source reached through ShipEngine.
	SourceOrderSource Source = "order_source"
	// SourceClient is this library, before or around dispatch.
	SourceClient Source = "client"
)

// Type is the broad category of an error.
type Type string

const (
	TypeValidation    Type = "validation"
	TypeSystem        Type = "system"
	TypeSecurity      Type = "security"
	TypeBusinessRules Type = "business_rules"
	TypeUnspecified   Type = "unspecified"
)

// Code is a stable machine-readable error token.
type Code string

const (
	CodeFieldValueRequired Code = "field_value_required"
	CodeInvalidFieldValue  Code = "invalid_field_value"
	CodeRateLimitExceeded  Code = "rate_limit_exceeded"
	CodeTimeout            Code = "timeout"
	CodeRequestCancelled   Code = "request_cancelled"
	CodeUnauthorized       Code = "unauthorized"
	CodeUnspecified        Code = "unspecified"
)

// RateLimitURL documents the API rate limits.
const RateLimitURL = "https://www.shipengine.com/docs/rate-limits"

// Error is the single error shape returned by the client.
type Error struct {
	RequestID  string
	Source     Source
	Type       Type
	Code       Code
	Message    string
	URL        string
	StatusCode int // HTTP status, 0 when no response was received
	Err        error

	retryable bool
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s %s error (%s): %s (request_id: %s)", e.Source, e.Type, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%s %s error (%s): %s", e.Source, e.Type, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// ShipEngineError marks e as part of the ShipEngine error taxonomy.
func (e *Error) ShipEngineError() {}

// Retryable reports whether the retry engine may issue another attempt.
func (e *Error) Retryable() bool {
	return e.retryable
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Type == TypeValidation
	case ErrRateLimited:
		return e.Code == CodeRateLimitExceeded
	case ErrTimeout:
		return e.Code == CodeTimeout
	case ErrCancelled:
		return e.Code == CodeRequestCancelled
	case ErrUnauthorized:
		return e.Code == CodeUnauthorized
	}
	return false
}

// MarshalJSON renders the flat wire form. Missing request IDs and URLs are null.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RequestID *string `json:"requestId"`
		Source    Source  `json:"source"`
		Type      Type    `json:"type"`
		ErrorCode Code    `json:"errorCode"`
		Message   string  `json:"message"`
		URL       *string `json:"url"`
	}{
		RequestID: optional(e.RequestID),
		Source:    e.Source,
		Type:      e.Type,
		ErrorCode: e.Code,
		Message:   e.Message,
		URL:       optional(e.URL),
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// WithRetryable returns a copy of e with the retry flag set.
func (e *Error) WithRetryable(retryable bool) *Error {
	cp := *e
	cp.retryable = retryable
	return &cp
}

// NewValidationError builds a client-side validation error. It never carries a request ID.
func NewValidationError(code Code, message string) *Error {
	return &Error{
		Source:  SourceClient,
		Type:    TypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewRateLimitError builds the retryable error for HTTP 429 responses.
func NewRateLimitError(requestID string) *Error {
	return &Error{
		RequestID:  requestID,
		Source:     SourceShipEngine,
		Type:       TypeSystem,
		Code:       CodeRateLimitExceeded,
		Message:    "You have exceeded the rate limit.",
		URL:        RateLimitURL,
		StatusCode: 429,
		retryable:  true,
	}
}

// NewSystemError builds a non-retryable system error.
func NewSystemError(source Source, code Code, requestID, message string, err error) *Error {
	return &Error{
		RequestID: requestID,
		Source:    source,
		Type:      TypeSystem,
		Code:      code,
		Message:   message,
		Err:       err,
	}
}

// ParseSource maps a wire value onto a known Source, defaulting to SourceShipEngine.
func ParseSource(s string) Source {
	switch Source(s) {
	case SourceShipEngine, SourceCarrier, SourceOrderSource:
		return Source(s)
	}
	return SourceShipEngine
}

// ParseType maps a wire value onto a known Type, defaulting to TypeUnspecified.
func ParseType(s string) Type {
	switch Type(s) {
	case TypeValidation, TypeSystem, TypeSecurity, TypeBusinessRules:
		return Type(s)
	}
	return TypeUnspecified
}
