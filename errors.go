package shipengine

import (
	"errors"

	"github.com/shipengine/shipengine-go/internal/apierrors"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrValidation matches any validation error, local or remote.
	ErrValidation = apierrors.ErrValidation

	// ErrRateLimited matches rate_limit_exceeded errors.
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrTimeout matches attempts that exceeded the configured timeout.
	ErrTimeout = apierrors.ErrTimeout

	// ErrCancelled matches calls aborted through their context.
	ErrCancelled = apierrors.ErrCancelled

	// ErrUnauthorized matches rejected API keys.
	ErrUnauthorized = apierrors.ErrUnauthorized
)

// ShipEngineError is implemented by every error the client returns.
type ShipEngineError interface {
	error
	ShipEngineError() // marker method
}

// Error is the structured error returned by all client operations. It
// serializes to {"requestId", "source", "type", "errorCode", "message", "url"}.
type Error = apierrors.Error

// ErrorSource identifies where an error originated.
type ErrorSource = apierrors.Source

// Error sources.
const (
	SourceShipEngine  = apierrors.SourceShipEngine
	SourceCarrier     = apierrors.SourceCarrier
	SourceOrderSource = apierrors.SourceOrderSource
	SourceClient      = apierrors.SourceClient
)

// ErrorType is the broad category of an error.
type ErrorType = apierrors.Type

// Error types.
const (
	TypeValidation    = apierrors.TypeValidation
	TypeSystem        = apierrors.TypeSystem
	TypeSecurity      = apierrors.TypeSecurity
	TypeBusinessRules = apierrors.TypeBusinessRules
	TypeUnspecified   = apierrors.TypeUnspecified
)

// ErrorCode is a stable machine-readable error token.
type ErrorCode = apierrors.Code

// Error codes produced by the client. Codes reported by the API are passed
// through unchanged and may fall outside this list.
const (
	CodeFieldValueRequired = apierrors.CodeFieldValueRequired
	CodeInvalidFieldValue  = apierrors.CodeInvalidFieldValue
	CodeRateLimitExceeded  = apierrors.CodeRateLimitExceeded
	CodeTimeout            = apierrors.CodeTimeout
	CodeRequestCancelled   = apierrors.CodeRequestCancelled
	CodeUnauthorized       = apierrors.CodeUnauthorized
	CodeUnspecified        = apierrors.CodeUnspecified
)

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
