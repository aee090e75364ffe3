package shipengine

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/shipengine/shipengine-go/internal/api"
	"github.com/shipengine/shipengine-go/internal/apierrors"
)

const (
	// DefaultBaseURL is the production ShipEngine API endpoint.
	DefaultBaseURL = "https://api.shipengine.com/"
	// DefaultPageSize is used by paged endpoints when none is configured.
	DefaultPageSize = 50
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 1
	// DefaultTimeout bounds each attempt.
	DefaultTimeout = 5 * time.Second
)

// Validation messages.
const (
	msgAPIKeyRequired  = "A ShipEngine API key must be specified."
	msgInvalidRetries  = "Retries must be zero or greater."
	msgInvalidTimeout  = "Timeout must be greater than zero."
	msgInvalidPageSize = "Page size must be greater than zero."
	msgInvalidBaseURL  = "Base URL must be a valid http or https URL."
)

// Config holds the settings used for every call. A Config returned by
// NewConfig, New or Merge is always valid. Treat it as a value: Merge
// produces a new Config and never modifies the receiver.
type Config struct {
	APIKey    string
	BaseURL   string
	PageSize  int
	Retries   int
	Timeout   time.Duration
	Listeners []Listener
}

// DefaultConfig returns the defaults with the given API key. The result is
// not validated.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:   apiKey,
		BaseURL:  DefaultBaseURL,
		PageSize: DefaultPageSize,
		Retries:  DefaultRetries,
		Timeout:  DefaultTimeout,
	}
}

// NewConfig builds a validated Config from the defaults and opts. Options
// that only affect the client (transport, logger, retry policy) are ignored.
func NewConfig(apiKey string, opts ...Option) (Config, error) {
	cfg := newClientConfig(apiKey, opts)
	if err := cfg.Config.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.Config.clone(), nil
}

// Validate checks every field and returns the first failure as a
// validation *Error.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return apierrors.NewValidationError(apierrors.CodeFieldValueRequired, msgAPIKeyRequired)
	}
	if c.Retries < 0 {
		return apierrors.NewValidationError(apierrors.CodeInvalidFieldValue, msgInvalidRetries)
	}
	if c.Timeout <= 0 {
		return apierrors.NewValidationError(apierrors.CodeInvalidFieldValue, msgInvalidTimeout)
	}
	if c.PageSize <= 0 {
		return apierrors.NewValidationError(apierrors.CodeInvalidFieldValue, msgInvalidPageSize)
	}
	if !validBaseURL(c.BaseURL) {
		return apierrors.NewValidationError(apierrors.CodeInvalidFieldValue, msgInvalidBaseURL)
	}
	return nil
}

func validBaseURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Overrides is a partial Config. Nil fields keep the base value; per-call
// Listeners are appended after the base listeners.
type Overrides struct {
	APIKey    *string
	BaseURL   *string
	PageSize  *int
	Retries   *int
	Timeout   *time.Duration
	Listeners []Listener
}

// IsZero reports whether o overrides nothing.
func (o Overrides) IsZero() bool {
	return o.APIKey == nil && o.BaseURL == nil && o.PageSize == nil &&
		o.Retries == nil && o.Timeout == nil && len(o.Listeners) == 0
}

// Merge returns a copy of c with o applied, validated in full.
func (c Config) Merge(o Overrides) (Config, error) {
	merged := c.clone()
	if o.APIKey != nil {
		merged.APIKey = *o.APIKey
	}
	if o.BaseURL != nil {
		merged.BaseURL = *o.BaseURL
	}
	if o.PageSize != nil {
		merged.PageSize = *o.PageSize
	}
	if o.Retries != nil {
		merged.Retries = *o.Retries
	}
	if o.Timeout != nil {
		merged.Timeout = *o.Timeout
	}
	merged.Listeners = append(merged.Listeners, o.Listeners...)

	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// clone copies c so the listener slice is not shared.
func (c Config) clone() Config {
	c.Listeners = slices.Clone(c.Listeners)
	return c
}

func (c Config) apiSettings() api.Settings {
	return api.Settings{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Retries: c.Retries,
		Timeout: c.Timeout,
	}
}

// String returns a pointer to v, for use in Overrides.
func String(v string) *string { return &v }

// Int returns a pointer to v, for use in Overrides.
func Int(v int) *int { return &v }

// Duration returns a pointer to v, for use in Overrides.
func Duration(v time.Duration) *time.Duration { return &v }
