package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/shipengine/shipengine-go/internal/apierrors"
	"github.com/shipengine/shipengine-go/internal/events"
)

// DefaultUserAgent is sent when no other user agent is configured.
const DefaultUserAgent = "shipengine-go (go)"

// requestIDPrefix is the ShipEngine convention for request identifiers.
const requestIDPrefix = "req_"

// redacted replaces the API key in headers handed to listeners.
const redacted = "[REDACTED]"

// Client executes JSON-RPC calls with retries. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	transport Transport
	policy    RetryPolicy
	retryOn   []int
	limiter   *rate.Limiter
	logger    zerolog.Logger
	userAgent string
	newID     func() string
}

// Option configures the API client.
type Option func(*Client)

// WithTransport sets the transport collaborator.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithRetryPolicy sets the backoff policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithRetryOn adds HTTP status codes that are retried in addition to rate limiting.
func WithRetryOn(statusCodes []int) Option {
	return func(c *Client) {
		c.retryOn = slices.Clone(statusCodes)
	}
}

// WithRateLimiter throttles attempts on the client side. Each attempt waits
// for a token before it is dispatched.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRequestIDFunc replaces the request ID generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		c.newID = fn
	}
}

// New creates a new API client.
func New(opts ...Option) *Client {
	c := &Client{
		policy:    DefaultRetryPolicy(),
		logger:    zerolog.Nop(),
		userAgent: DefaultUserAgent,
		newID:     NewRequestID,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(nil)
	}
	return c
}

// NewRequestID returns a fresh "req_"-prefixed identifier.
func NewRequestID() string {
	return requestIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Transport returns the transport in use.
func (c *Client) Transport() Transport {
	return c.transport
}

// Execute runs one logical call as up to s.Retries+1 sequential attempts.
// Each attempt is reported to d as a RequestSent/ResponseReceived pair.
// Only retryable errors (rate limiting, plus any WithRetryOn statuses) lead
// to another attempt; everything else is returned on first occurrence.
func (c *Client) Execute(ctx context.Context, req Request, s Settings, d *events.Dispatcher) (*Response, error) {
	var params json.RawMessage
	if req.Params != nil {
		raw, err := json.Marshal(req.Params)
		if err != nil {
			e := apierrors.NewValidationError(apierrors.CodeInvalidFieldValue, "The request params could not be encoded as JSON.")
			e.Err = err
			return nil, e
		}
		params = raw
	}

	maxAttempts := s.Retries + 1
	log := c.logger.With().Str("method", req.Method).Logger()

	var delay time.Duration
	for attempt := 0; ; attempt++ {
		requestID := c.newID()

		body, err := json.Marshal(rpcRequest{
			JSONRPC: jsonRPCVersion,
			ID:      requestID,
			Method:  req.Method,
			Params:  params,
		})
		if err != nil {
			return nil, apierrors.NewSystemError(apierrors.SourceClient, apierrors.CodeUnspecified, requestID,
				"The request could not be encoded.", err)
		}

		httpReq := &HTTPRequest{
			Method: http.MethodPost,
			URL:    s.BaseURL,
			Header: c.headers(s.APIKey),
			Body:   body,
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, ThrottleError(ctx, err)
			}
		}

		d.RequestSent(events.RequestSentEvent{
			Type:      events.TypeRequestSent,
			Timestamp: time.Now(),
			Message:   "Calling the ShipEngine " + req.Method + " API at " + s.BaseURL,
			RequestID: requestID,
			URL:       s.BaseURL,
			Headers:   redact(httpReq.Header),
			Body:      body,
			Retry:     attempt,
			Timeout:   s.Timeout,
		})
		log.Debug().Str("request_id", requestID).Int("retry", attempt).Msg("request sent")

		start := time.Now()
		resp, terr := c.dispatch(ctx, httpReq, s.Timeout)
		elapsed := time.Since(start)

		apiErr := Classify(Outcome{
			RequestID: requestID,
			Response:  resp,
			Err:       terr,
			Cancelled: ctx.Err() != nil,
			Timeout:   s.Timeout,
		})

		c.emitResponse(d, req.Method, requestID, s.BaseURL, attempt, elapsed, resp, apiErr)

		if apiErr == nil {
			log.Debug().Str("request_id", requestID).Int("retry", attempt).Dur("elapsed", elapsed).Msg("response received")
			return resp, nil
		}

		if !c.shouldRetry(apiErr) || attempt >= maxAttempts-1 {
			log.Debug().Err(apiErr).Str("request_id", requestID).Int("retry", attempt).Msg("request failed")
			return nil, apiErr
		}

		delay = c.policy.NextDelay(attempt, resp, delay)
		log.Info().
			Str("request_id", requestID).
			Int("retry", attempt).
			Str("code", string(apiErr.Code)).
			Dur("delay", delay).
			Msg("retrying request")

		if err := c.policy.Wait(ctx, delay); err != nil {
			return nil, Classify(Outcome{RequestID: requestID, Err: err, Cancelled: true, Timeout: s.Timeout})
		}
	}
}

// dispatch sends one attempt bounded by timeout.
func (c *Client) dispatch(ctx context.Context, req *HTTPRequest, timeout time.Duration) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.transport.Do(attemptCtx, req)
}

func (c *Client) emitResponse(d *events.Dispatcher, method, requestID, url string, attempt int,
	elapsed time.Duration, resp *Response, apiErr *apierrors.Error) {
	ev := events.ResponseReceivedEvent{
		Type:      events.TypeResponseReceived,
		Timestamp: time.Now(),
		RequestID: requestID,
		URL:       url,
		Retry:     attempt,
		Elapsed:   elapsed,
	}
	if resp != nil {
		ev.StatusCode = resp.StatusCode
		ev.Headers = resp.Header.Clone()
		ev.Body = resp.Body
	}
	if apiErr != nil {
		ev.Err = apiErr
		ev.Message = "The ShipEngine " + method + " API call failed: " + apiErr.Message
	} else {
		ev.Message = "Received a response from the ShipEngine " + method + " API"
	}
	d.ResponseReceived(ev)
}

func (c *Client) shouldRetry(e *apierrors.Error) bool {
	if e.Retryable() {
		return true
	}
	return e.StatusCode != 0 && slices.Contains(c.retryOn, e.StatusCode)
}

func (c *Client) headers(apiKey string) http.Header {
	h := make(http.Header)
	h.Set("Api-Key", apiKey)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("User-Agent", c.userAgent)
	return h
}

func redact(h http.Header) http.Header {
	out := h.Clone()
	if out.Get("Api-Key") != "" {
		out.Set("Api-Key", redacted)
	}
	return out
}
