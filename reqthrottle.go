// Package reqthrottle wires the HTTP client to the throttler, so
// declarative request specs can be dispatched to a remote server at a
// bounded rate.
package reqthrottle

import (
	"fmt"

	"github.com/adamwoolhether/reqthrottle/client"
	"github.com/adamwoolhether/reqthrottle/throttled"
	"github.com/adamwoolhether/reqthrottle/throttler"
)

// HTTPThrottler dispatches [client.Spec] requests through a [client.Client].
type HTTPThrottler = throttler.Throttler[client.Spec, *client.Prepared, *client.Response]

// HTTPRequest is the handle returned for every submitted [client.Spec].
type HTTPRequest = throttled.Request[*client.Prepared, *client.Response]

// NewClient instantiates a new *Client with the provided options.
// If not specified, the default http.Client and http.Transport are used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// NewHTTP returns an HTTPThrottler named name that sends through c.
// A nil c is replaced by a client built with default options.
// The throttler still has to be started.
func NewHTTP(name string, c *client.Client, opts ...throttler.Option) (*HTTPThrottler, error) {
	if c == nil {
		var err error
		if c, err = NewClient(); err != nil {
			return nil, fmt.Errorf("building default client: %w", err)
		}
	}

	return throttler.New[client.Spec, *client.Prepared, *client.Response](name, c, opts...)
}
