package shipengine

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/shipengine/shipengine-go/internal/api"
)

// RetryPolicy configures the delay between retried attempts.
type RetryPolicy = api.RetryPolicy

// DefaultRetryPolicy returns the default backoff: 1s, 2s, 4s ... capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return api.DefaultRetryPolicy()
}

// Transport performs a single HTTP round trip for the client.
type Transport = api.Transport

// clientConfig holds configuration for the client.
type clientConfig struct {
	Config

	httpClient  *http.Client
	transport   Transport
	logger      zerolog.Logger
	retryPolicy RetryPolicy
	retryOn     []int
	limiter     *rate.Limiter
}

func newClientConfig(apiKey string, opts []Option) *clientConfig {
	cfg := &clientConfig{
		Config:      DefaultConfig(apiKey),
		logger:      zerolog.Nop(),
		retryPolicy: api.DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.BaseURL = url
	}
}

// WithPageSize sets the default page size for paged endpoints.
func WithPageSize(size int) Option {
	return func(c *clientConfig) {
		c.PageSize = size
	}
}

// WithRetries sets how many times a rate-limited call is retried.
// Zero disables retries. Default: 1
func WithRetries(count int) Option {
	return func(c *clientConfig) {
		c.Retries = count
	}
}

// WithTimeout sets the timeout applied to each attempt. Default: 5 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.Timeout = timeout
	}
}

// WithListener registers an event listener. Listeners are notified in the
// order they were registered.
func WithListener(l Listener) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.Listeners = append(c.Listeners, l)
		}
	}
}

// WithHTTPClient sets a custom HTTP client. Its Timeout, if any, applies in
// addition to the per-attempt timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTransport replaces the HTTP transport entirely. Takes precedence over
// WithHTTPClient.
func WithTransport(t Transport) Option {
	return func(c *clientConfig) {
		c.transport = t
	}
}

// WithLogger sets the logger for request diagnostics. Default: disabled
func WithLogger(logger zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithRetryPolicy sets the backoff between retried attempts.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *clientConfig) {
		c.retryPolicy = p
	}
}

// WithRetryOn sets additional HTTP status codes that are retried.
// Rate-limited responses are always retried; nothing else is by default.
func WithRetryOn(statusCodes []int) Option {
	return func(c *clientConfig) {
		c.retryOn = statusCodes
	}
}

// WithRateLimiter throttles outgoing attempts on the client side. Every
// attempt, including retries, waits for a token.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *clientConfig) {
		c.limiter = l
	}
}
