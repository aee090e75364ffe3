package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/shipengine/shipengine-go/internal/apierrors"
)

// Outcome is the raw result of one attempt.
type Outcome struct {
	RequestID string        // ID assigned to the attempt
	Response  *Response     // nil when the transport failed
	Err       error         // transport failure
	Cancelled bool          // the caller's context was done when the attempt ended
	Timeout   time.Duration // per-attempt timeout in force
}

// Classify maps an attempt outcome onto the error taxonomy. It returns nil
// for a successful JSON-RPC result. Classify has no side effects: the same
// outcome always yields an equal error.
func Classify(o Outcome) *apierrors.Error {
	if o.Err != nil {
		return classifyTransport(o)
	}

	resp := o.Response
	if resp == nil {
		return apierrors.NewSystemError(apierrors.SourceClient, apierrors.CodeUnspecified, o.RequestID,
			"No response was received from the ShipEngine API.", nil)
	}

	valid := gjson.ValidBytes(resp.Body)
	requestID := o.RequestID
	if valid {
		if id := gjson.GetBytes(resp.Body, "id"); id.Type == gjson.String && id.Str != "" {
			requestID = id.Str
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return withStatus(apierrors.NewRateLimitError(requestID), resp.StatusCode)
	}

	if valid {
		if envelope := gjson.GetBytes(resp.Body, "error"); envelope.IsObject() {
			return classifyEnvelope(envelope, requestID, resp.StatusCode)
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &apierrors.Error{
			RequestID:  requestID,
			Source:     apierrors.SourceShipEngine,
			Type:       apierrors.TypeSecurity,
			Code:       apierrors.CodeUnauthorized,
			Message:    "The API key is invalid or has been revoked.",
			StatusCode: resp.StatusCode,
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return withStatus(apierrors.NewSystemError(apierrors.SourceShipEngine, apierrors.CodeUnspecified, requestID,
			"Unexpected HTTP status "+strconv.Itoa(resp.StatusCode)+".", nil), resp.StatusCode)
	case !valid || !gjson.GetBytes(resp.Body, "result").Exists():
		return withStatus(apierrors.NewSystemError(apierrors.SourceShipEngine, apierrors.CodeUnspecified, requestID,
			"Invalid response from the ShipEngine API.", nil), resp.StatusCode)
	}

	return nil
}

func classifyTransport(o Outcome) *apierrors.Error {
	if o.Cancelled {
		return apierrors.NewSystemError(apierrors.SourceClient, apierrors.CodeRequestCancelled, o.RequestID,
			"The request was cancelled.", o.Err)
	}

	var netErr net.Error
	if errors.Is(o.Err, context.DeadlineExceeded) || (errors.As(o.Err, &netErr) && netErr.Timeout()) {
		return apierrors.NewSystemError(apierrors.SourceClient, apierrors.CodeTimeout, o.RequestID,
			fmt.Sprintf("The request took longer than the %s seconds allowed.", formatSeconds(o.Timeout)), o.Err)
	}

	return apierrors.NewSystemError(apierrors.SourceClient, apierrors.CodeUnspecified, o.RequestID,
		fmt.Sprintf("Unable to connect to the ShipEngine API: %v", o.Err), o.Err)
}

// classifyEnvelope reads {"error": {"message": ..., "data": {"source", "type", "code", "url"}}}.
func classifyEnvelope(envelope gjson.Result, requestID string, status int) *apierrors.Error {
	data := envelope.Get("data")

	code := apierrors.Code(data.Get("code").Str)
	if code == "" {
		code = apierrors.CodeUnspecified
	}
	if code == apierrors.CodeRateLimitExceeded {
		return withStatus(apierrors.NewRateLimitError(requestID), status)
	}

	message := envelope.Get("message").Str
	if message == "" {
		message = "The ShipEngine API returned an error."
	}

	return &apierrors.Error{
		RequestID:  requestID,
		Source:     apierrors.ParseSource(data.Get("source").Str),
		Type:       apierrors.ParseType(data.Get("type").Str),
		Code:       code,
		Message:    message,
		URL:        data.Get("url").Str,
		StatusCode: status,
	}
}

func withStatus(e *apierrors.Error, status int) *apierrors.Error {
	e.StatusCode = status
	return e
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// ThrottleError reports a client-side rate limiter wait that failed before an
// attempt was sent. It carries no request ID.
func ThrottleError(ctx context.Context, err error) *apierrors.Error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return apierrors.NewSystemError(apierrors.SourceClient, apierrors.CodeRequestCancelled, "",
			"The request was cancelled.", err)
	}
	return apierrors.NewSystemError(apierrors.SourceClient, apierrors.CodeTimeout, "",
		"The request could not be sent before the context deadline.", err)
}
