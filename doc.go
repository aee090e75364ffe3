// Package shipengine provides a Go client for the ShipEngine JSON-RPC API.
//
// Every call is executed by a retry engine: rate-limited attempts are
// retried with exponential backoff up to the configured number of retries,
// every attempt is bounded by the configured timeout, and each attempt is
// reported to registered listeners as a RequestSentEvent followed by a
// ResponseReceivedEvent. All failures are returned as *Error values carrying
// a source, type, machine-readable code and, when a request was sent, the
// request ID.
//
// Basic usage:
//
//	client, err := shipengine.New("your-api-key",
//	    shipengine.WithRetries(3),
//	    shipengine.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var result struct {
//	    IsValid bool `json:"isValid"`
//	}
//	err = client.Call(ctx, "address.validate.v1", params, &result)
//
// Settings can be overridden per call; overrides are validated before any
// request is sent:
//
//	err = client.Call(ctx, "address.validate.v1", params, &result,
//	    shipengine.Overrides{Retries: shipengine.Int(0)})
package shipengine
