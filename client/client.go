// Package client implements a backend-bound HTTP client built on [net/http].
package client

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hostbound/hostbound/client/throttle"
	"github.com/hostbound/hostbound/useragent"
)

// Client dispatches requests for different endpoint paths against a single
// backend server. It is immutable after construction and safe for
// concurrent use by multiple goroutines.
type Client struct {
	scheme     string
	host       string
	port       int
	pathPrefix string

	hc      *http.Client
	headers http.Header
	errHook ErrorHook
	raise   bool

	logger    *slog.Logger
	logLevel  slog.Level
	logParams bool
}

// New builds a Client bound to the given backend. hostOrURL may be a bare
// hostname, a host:port, or a full URL from which the scheme, host, port,
// and path prefix are derived. Explicit options override derived parts.
func New(hostOrURL string, optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	tgt, err := parseTarget(hostOrURL, &opts)
	if err != nil {
		return nil, err
	}
	if err := validateTarget(tgt); err != nil {
		return nil, fmt.Errorf("invalid backend target: %w", err)
	}

	client := &Client{
		scheme:     tgt.Scheme,
		host:       tgt.Host,
		port:       tgt.Port,
		pathPrefix: tgt.PathPrefix,
		hc:         &http.Client{},
		raise:      !opts.noRaiseErrors,
		errHook:    opts.errHook,
		logger:     slog.Default(),
		logLevel:   slog.LevelDebug,
		logParams:  !opts.noLogParams,
	}

	if opts.client != nil {
		client.hc = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.logLevel != nil {
		client.logLevel = *opts.logLevel
	}

	if opts.timeout != nil {
		client.hc.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	client.headers = sessionHeaders(&opts)

	transport, err := buildTransport(client, &opts)
	if err != nil {
		return nil, err
	}
	client.hc.Transport = transport

	return client, nil
}

// sessionHeaders assembles the persistent header set, generating a
// User-Agent unless the caller supplied or suppressed one.
func sessionHeaders(opts *options) http.Header {
	headers := http.Header{}
	for k, v := range opts.headers {
		headers.Set(k, v)
	}

	if opts.userAgent != "" {
		headers.Set("User-Agent", opts.userAgent)
	}

	if headers.Get("User-Agent") == "" && !opts.noUserAgent {
		format := opts.userAgentFmt
		if format == "" {
			format = useragent.DefaultFormat
		}
		headers.Set("User-Agent", useragent.Generate(format, opts.uaOpts...))
	}

	return headers
}

// buildTransport assembles the RoundTripper stack. From innermost to
// outermost: base transport, persistent headers, request IDs, tracing,
// throttling.
func buildTransport(client *Client, opts *options) (http.RoundTripper, error) {
	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		if opts.tlsConfig != nil {
			return nil, fmt.Errorf("cannot combine WithTransport with a TLS config option")
		}
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}

	if opts.tlsConfig != nil {
		base, ok := transport.(*http.Transport)
		if !ok {
			return nil, fmt.Errorf("TLS config requires an *http.Transport base, got %T", transport)
		}
		base = base.Clone()
		base.TLSClientConfig = opts.tlsConfig
		transport = base
	}

	if len(client.headers) > 0 {
		transport = headerTransport{headers: client.headers, base: transport}
	}
	if opts.requestID {
		transport = requestIDTransport{base: transport}
	}
	if opts.tracer != nil {
		transport = traceTransport{tracer: opts.tracer, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.limit, opts.throttle.burst, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}

	return transport, nil
}

// Scheme returns the URI scheme the client was bound with.
func (c *Client) Scheme() string { return c.scheme }

// Host returns the backend hostname.
func (c *Client) Host() string { return c.host }

// Port returns the backend port, or 0 when none was specified.
func (c *Client) Port() int { return c.port }

// PathPrefix returns the normalized path prefix, e.g. "api/v1/".
func (c *Client) PathPrefix() string { return c.pathPrefix }

// String describes the client by its base URL.
func (c *Client) String() string {
	return fmt.Sprintf("<Client[%s]>", c.URLFor(""))
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() {
	c.hc.CloseIdleConnections()
}
