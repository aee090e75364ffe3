package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipengine/shipengine-go/internal/apierrors"
)

func jsonResponse(status int, body string) *Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return &Response{StatusCode: status, Header: h, Body: []byte(body)}
}

func TestClassify_Success(t *testing.T) {
	o := Outcome{
		RequestID: "req_local",
		Response:  jsonResponse(200, `{"jsonrpc":"2.0","id":"req_local","result":{"isValid":true}}`),
	}
	assert.Nil(t, Classify(o))
}

func TestClassify_RateLimit(t *testing.T) {
	o := Outcome{
		RequestID: "req_local",
		Response:  jsonResponse(429, `{"jsonrpc":"2.0","id":"req_remote","error":{"code":-32603,"message":"slow down"}}`),
	}

	err := Classify(o)
	require.NotNil(t, err)
	assert.Equal(t, apierrors.SourceShipEngine, err.Source)
	assert.Equal(t, apierrors.TypeSystem, err.Type)
	assert.Equal(t, apierrors.CodeRateLimitExceeded, err.Code)
	assert.Equal(t, "You have exceeded the rate limit.", err.Message)
	assert.Equal(t, "https://www.shipengine.com/docs/rate-limits", err.URL)
	assert.Equal(t, "req_remote", err.RequestID, "envelope id wins over the assigned id")
	assert.Equal(t, 429, err.StatusCode)
	assert.True(t, err.Retryable())
}

func TestClassify_RateLimitWithoutBodyUsesAssignedID(t *testing.T) {
	err := Classify(Outcome{RequestID: "req_local", Response: &Response{StatusCode: 429}})
	require.NotNil(t, err)
	assert.Equal(t, "req_local", err.RequestID)
	assert.True(t, err.Retryable())
}

func TestClassify_EnvelopeRateLimitCode(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":"req_1","error":{"code":-32603,"message":"x","data":{"source":"shipengine","type":"system","code":"rate_limit_exceeded"}}}`
	err := Classify(Outcome{RequestID: "req_1", Response: jsonResponse(500, body)})
	require.NotNil(t, err)
	assert.Equal(t, apierrors.CodeRateLimitExceeded, err.Code)
	assert.True(t, err.Retryable())
}

func TestClassify_Envelope(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantSource apierrors.Source
		wantType   apierrors.Type
		wantCode   apierrors.Code
		wantMsg    string
		wantURL    string
	}{
		{
			name:       "validation from shipengine",
			body:       `{"jsonrpc":"2.0","id":"req_2","error":{"code":-32602,"message":"Invalid postal code.","data":{"source":"shipengine","type":"validation","code":"invalid_field_value"}}}`,
			wantSource: apierrors.SourceShipEngine,
			wantType:   apierrors.TypeValidation,
			wantCode:   apierrors.CodeInvalidFieldValue,
			wantMsg:    "Invalid postal code.",
		},
		{
			name:       "carrier business rules with url",
			body:       `{"jsonrpc":"2.0","id":"req_2","error":{"code":-32603,"message":"Carrier rejected the label.","data":{"source":"carrier","type":"business_rules","code":"invalid_address","url":"https://example.com/docs"}}}`,
			wantSource: apierrors.SourceCarrier,
			wantType:   apierrors.TypeBusinessRules,
			wantCode:   apierrors.Code("invalid_address"),
			wantMsg:    "Carrier rejected the label.",
			wantURL:    "https://example.com/docs",
		},
		{
			name:       "unknown type and missing code",
			body:       `{"jsonrpc":"2.0","id":"req_2","error":{"code":-32603,"message":"Account suspended.","data":{"source":"?","type":"account_status"}}}`,
			wantSource: apierrors.SourceShipEngine,
			wantType:   apierrors.TypeUnspecified,
			wantCode:   apierrors.CodeUnspecified,
			wantMsg:    "Account suspended.",
		},
		{
			name:       "no data, no message",
			body:       `{"jsonrpc":"2.0","id":"req_2","error":{"code":-32603}}`,
			wantSource: apierrors.SourceShipEngine,
			wantType:   apierrors.TypeUnspecified,
			wantCode:   apierrors.CodeUnspecified,
			wantMsg:    "The ShipEngine API returned an error.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(Outcome{RequestID: "req_local", Response: jsonResponse(400, tt.body)})
			require.NotNil(t, err)
			assert.Equal(t, tt.wantSource, err.Source)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantURL, err.URL)
			assert.Equal(t, "req_2", err.RequestID)
			assert.False(t, err.Retryable())
		})
	}
}

func TestClassify_HTTPStatusWithoutEnvelope(t *testing.T) {
	tests := []struct {
		status   int
		wantType apierrors.Type
		wantCode apierrors.Code
	}{
		{401, apierrors.TypeSecurity, apierrors.CodeUnauthorized},
		{403, apierrors.TypeSecurity, apierrors.CodeUnauthorized},
		{404, apierrors.TypeSystem, apierrors.CodeUnspecified},
		{500, apierrors.TypeSystem, apierrors.CodeUnspecified},
		{503, apierrors.TypeSystem, apierrors.CodeUnspecified},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := Classify(Outcome{RequestID: "req_local", Response: &Response{StatusCode: tt.status, Body: []byte("<html>oops</html>")}})
			require.NotNil(t, err)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, "req_local", err.RequestID)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.False(t, err.Retryable(), "only rate limiting is retryable by default")
		})
	}
}

func TestClassify_NullErrorMemberIsSuccess(t *testing.T) {
	o := Outcome{
		RequestID: "req_local",
		Response:  jsonResponse(200, `{"jsonrpc":"2.0","id":"req_x","result":{"ok":true},"error":null}`),
	}
	assert.Nil(t, Classify(o))
}

func TestClassify_NonObjectErrorMemberWithoutResult(t *testing.T) {
	err := Classify(Outcome{RequestID: "req_local", Response: jsonResponse(200, `{"jsonrpc":"2.0","error":null}`)})
	require.NotNil(t, err)
	assert.Equal(t, "Invalid response from the ShipEngine API.", err.Message)
}

func TestThrottleError(t *testing.T) {
	t.Run("deadline", func(t *testing.T) {
		err := ThrottleError(context.Background(), errors.New("rate: Wait(n=1) would exceed context deadline"))
		assert.Equal(t, apierrors.SourceClient, err.Source)
		assert.Equal(t, apierrors.CodeTimeout, err.Code)
		assert.Empty(t, err.RequestID)
		assert.False(t, err.Retryable())
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := ThrottleError(ctx, context.Canceled)
		assert.Equal(t, apierrors.CodeRequestCancelled, err.Code)
		assert.Empty(t, err.RequestID)
		assert.ErrorIs(t, err, apierrors.ErrCancelled)
	})
}

func TestClassify_InvalidSuccessBody(t *testing.T) {
	for _, body := range []string{"not json", `{"jsonrpc":"2.0","id":"req_1"}`} {
		err := Classify(Outcome{RequestID: "req_local", Response: jsonResponse(200, body)})
		require.NotNil(t, err, body)
		assert.Equal(t, apierrors.CodeUnspecified, err.Code)
		assert.Equal(t, "Invalid response from the ShipEngine API.", err.Message)
	}
}

func TestClassify_TransportFailures(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		err := Classify(Outcome{RequestID: "req_c", Err: context.Canceled, Cancelled: true})
		require.NotNil(t, err)
		assert.Equal(t, apierrors.CodeRequestCancelled, err.Code)
		assert.Equal(t, apierrors.SourceClient, err.Source)
		assert.ErrorIs(t, err, apierrors.ErrCancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("attempt timeout", func(t *testing.T) {
		cause := fmt.Errorf("Post \"http://x\": %w", context.DeadlineExceeded)
		err := Classify(Outcome{RequestID: "req_t", Err: cause, Timeout: 1500 * time.Millisecond})
		require.NotNil(t, err)
		assert.Equal(t, apierrors.CodeTimeout, err.Code)
		assert.Equal(t, "The request took longer than the 1.5 seconds allowed.", err.Message)
		assert.Equal(t, "req_t", err.RequestID)
		assert.False(t, err.Retryable())
	})

	t.Run("connection failure", func(t *testing.T) {
		cause := errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
		err := Classify(Outcome{RequestID: "req_n", Err: cause})
		require.NotNil(t, err)
		assert.Equal(t, apierrors.CodeUnspecified, err.Code)
		assert.Equal(t, apierrors.TypeSystem, err.Type)
		assert.Contains(t, err.Message, "connection refused")
		assert.ErrorIs(t, err, cause)
		assert.False(t, err.Retryable())
	})
}

func TestClassify_NilResponse(t *testing.T) {
	err := Classify(Outcome{RequestID: "req_x"})
	require.NotNil(t, err)
	assert.Equal(t, apierrors.CodeUnspecified, err.Code)
}

func TestClassify_Idempotent(t *testing.T) {
	outcomes := []Outcome{
		{RequestID: "req_1", Response: jsonResponse(429, `{}`)},
		{RequestID: "req_1", Response: jsonResponse(400, `{"id":"req_9","error":{"message":"bad","data":{"type":"validation","code":"invalid_field_value"}}}`)},
		{RequestID: "req_1", Err: context.DeadlineExceeded, Timeout: time.Second},
		{RequestID: "req_1", Response: &Response{StatusCode: 502}},
	}

	for _, o := range outcomes {
		first := Classify(o)
		second := Classify(o)
		assert.Equal(t, first, second)
	}
}
