package shipengine

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/shipengine/shipengine-go/internal/api"
	"github.com/shipengine/shipengine-go/internal/apierrors"
	"github.com/shipengine/shipengine-go/internal/events"
)

// Client is the ShipEngine API client. It is safe for concurrent use; its
// Config is fixed at construction.
type Client struct {
	config    Config
	apiClient *api.Client
	logger    zerolog.Logger
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(cfg *clientConfig) *api.Client {
	transport := cfg.transport
	if transport == nil {
		transport = api.NewHTTPTransport(cfg.httpClient)
	}

	apiOpts := []api.Option{
		api.WithTransport(transport),
		api.WithRetryPolicy(cfg.retryPolicy),
		api.WithLogger(cfg.logger),
		api.WithUserAgent(userAgent()),
	}
	if len(cfg.retryOn) > 0 {
		apiOpts = append(apiOpts, api.WithRetryOn(cfg.retryOn))
	}
	if cfg.limiter != nil {
		apiOpts = append(apiOpts, api.WithRateLimiter(cfg.limiter))
	}

	return api.New(apiOpts...)
}

// New creates a new ShipEngine client with the given API key. The
// resulting settings are validated; an invalid value returns a validation
// *Error and no client.
func New(apiKey string, opts ...Option) (*Client, error) {
	cfg := newClientConfig(apiKey, opts)
	if err := cfg.Config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config:    cfg.Config.clone(),
		apiClient: buildAPIClient(cfg),
		logger:    cfg.logger,
	}, nil
}

// Config returns a copy of the client's base settings.
func (c *Client) Config() Config {
	return c.config.clone()
}

// Call invokes an RPC method and decodes its result into result, which may
// be nil to discard it. Overrides are merged onto the client's settings in
// order; an invalid merge fails before any request is sent.
//
// Every failure is an *Error. Listener panics never interrupt the call; they
// are reported once it completes. On a failed call the *ListenerError values
// are added to the returned error's cause chain. On a successful call result
// is still populated and the listener failure is returned.
func (c *Client) Call(ctx context.Context, method string, params, result any, overrides ...Overrides) error {
	settings := c.config
	for _, o := range overrides {
		merged, err := settings.Merge(o)
		if err != nil {
			return err
		}
		settings = merged
	}

	d := events.NewDispatcher(settings.Listeners...)
	resp, err := c.apiClient.Execute(ctx, api.Request{Method: method, Params: params}, settings.apiSettings(), d)

	listenerErr := d.Err()
	if err != nil {
		if listenerErr != nil {
			c.logger.Warn().Err(listenerErr).Str("method", method).Msg("event listener failed")
			return withListenerFailure(err, listenerErr)
		}
		return err
	}

	if result != nil {
		if err := json.Unmarshal(resp.Result(), result); err != nil {
			return apierrors.NewSystemError(apierrors.SourceShipEngine, apierrors.CodeUnspecified, resp.ID(),
				"The ShipEngine API returned a result that could not be decoded.", err)
		}
	}

	if listenerErr != nil {
		return apierrors.NewSystemError(apierrors.SourceClient, apierrors.CodeUnspecified, resp.ID(),
			"An event listener failed: "+listenerErr.Error(), listenerErr)
	}
	return nil
}

// withListenerFailure attaches listener failures to the cause chain of a
// failed call. The call's own *Error stays the outer value.
func withListenerFailure(err, listenerErr error) error {
	var e *apierrors.Error
	if !errors.As(err, &e) {
		return errors.Join(err, listenerErr)
	}
	cp := *e
	cp.Err = errors.Join(e.Err, listenerErr)
	return &cp
}

// Call invokes an RPC method on c and returns its decoded result.
//
// Example:
//
//	type validateResult struct {
//	    IsValid bool `json:"isValid"`
//	}
//	res, err := shipengine.Call[validateResult](ctx, client, "address.validate.v1", params)
func Call[T any](ctx context.Context, c *Client, method string, params any, overrides ...Overrides) (T, error) {
	var out T
	if err := c.Call(ctx, method, params, &out, overrides...); err != nil {
		return out, err
	}
	return out, nil
}
