package hostbound

import (
	"github.com/hostbound/hostbound/client"
)

// Client is re-exported from [client] for convenience.
type Client = client.Client

// Option configures a [Client] built via [New].
type Option = client.Option

// RequestOption configures an individual request.
type RequestOption = client.RequestOption

// StatusError is returned for 4xx/5xx responses when the error-raising
// policy is active.
type StatusError = client.StatusError

// New instantiates a *Client bound to the given backend host or URL.
// If not specified, the default http.Client and http.Transport are used.
func New(hostOrURL string, opts ...Option) (*Client, error) {
	return client.New(hostOrURL, opts...)
}
