package client

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/hostbound/hostbound/client/throttle"
	"github.com/hostbound/hostbound/useragent"
)

// Option is a functional option for configuring a [Client] via [New].
type Option func(*options) error

type options struct {
	scheme     string
	port       int
	pathPrefix string
	noPath     bool

	headers       map[string]string
	userAgent     string
	userAgentFmt  string
	noUserAgent   bool
	uaOpts        []useragent.Option
	noRaiseErrors bool
	errHook       ErrorHook

	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	tlsConfig         *tls.Config
	noFollowRedirects bool
	throttle          *throttleConfig
	requestID         bool
	tracer            trace.Tracer

	logger      *slog.Logger
	logLevel    *slog.Level
	noLogParams bool
}

type throttleConfig struct {
	limit rate.Limit
	burst int
}

// WithScheme overrides the URI scheme (default: http, or the scheme of the
// base URL when one was given).
func WithScheme(scheme string) Option {
	return func(o *options) error {
		if scheme == "" {
			return errors.New("scheme must not be empty")
		}
		o.scheme = scheme
		return nil
	}
}

// WithPort overrides the backend port. Conflicts with a port embedded in
// the host string.
func WithPort(port int) Option {
	return func(o *options) error {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("port[%d] out of range", port)
		}
		o.port = port
		return nil
	}
}

// WithPathPrefix sets a URI path prefix included on all relative request
// URLs. Leading/trailing slashes are normalized.
func WithPathPrefix(prefix string) Option {
	return func(o *options) error {
		o.pathPrefix = prefix
		return nil
	}
}

// WithNoPath ignores the path portion of a base URL instead of adopting it
// as the path prefix.
func WithNoPath() Option {
	return func(o *options) error {
		o.noPath = true
		return nil
	}
}

// WithDefaultHeaders sets persistent headers included on every outgoing
// request. Headers set on an individual request take precedence.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(o *options) error {
		o.headers = headers
		return nil
	}
}

// WithUserAgent sets a literal User-Agent header on all outgoing requests,
// bypassing generation.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithUserAgentFormat selects the useragent format template used to
// generate the User-Agent header. Additional generation options may be
// supplied, e.g. contact information.
func WithUserAgentFormat(format string, opts ...useragent.Option) Option {
	return func(o *options) error {
		if format == "" {
			return errors.New("user agent format must not be empty")
		}
		o.userAgentFmt = format
		o.uaOpts = opts
		return nil
	}
}

// WithNoUserAgent disables the generated User-Agent header entirely.
func WithNoUserAgent() Option {
	return func(o *options) error {
		o.noUserAgent = true
		return nil
	}
}

// WithNoRaiseErrors disables the default policy of converting 4xx/5xx
// responses into a *StatusError. It may be re-enabled per request via
// [WithRaiseErrors].
func WithNoRaiseErrors() Option {
	return func(o *options) error {
		o.noRaiseErrors = true
		return nil
	}
}

// WithErrorHook passes every request error (status or transport) through
// the given hook, letting callers substitute their own error types.
func WithErrorHook(hook ErrorHook) Option {
	return func(o *options) error {
		if hook == nil {
			return errors.New("error hook must not be nil")
		}
		o.errHook = hook
		return nil
	}
}

// WithHTTPClient replaces the default [http.Client] used by the [Client].
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		o.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		o.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		o.timeout = &d
		return nil
	}
}

// WithTLSConfig applies a TLS configuration to the base transport. It
// cannot be combined with [WithTransport].
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("tls config must not be nil")
		}
		o.tlsConfig = cfg
		return nil
	}
}

// WithInsecureTLS disables server certificate verification. Intended for
// test backends with self-signed certificates.
func WithInsecureTLS() Option {
	return func(o *options) error {
		o.tlsConfig = &tls.Config{InsecureSkipVerify: true}
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(o *options) error {
		o.noFollowRedirects = true
		return nil
	}
}

// WithRateLimit spaces outgoing requests at least interval apart, blocking
// until a slot is available or the request context ends.
func WithRateLimit(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return fmt.Errorf("rate limit interval[%v] %w", interval, throttle.ErrInvalidLimit)
		}
		o.throttle = &throttleConfig{limit: rate.Every(interval), burst: 1}
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests
// per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrInvalidLimit)
		}
		o.throttle = &throttleConfig{limit: rate.Limit(rps), burst: burst}
		return nil
	}
}

// WithRequestID stamps every outgoing request with a fresh UUID in the
// X-Request-Id header.
func WithRequestID() Option {
	return func(o *options) error {
		o.requestID = true
		return nil
	}
}

// WithTracer opens an OpenTelemetry span around every outgoing request and
// propagates trace context headers to the backend.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithLogLevel sets the level request lines are logged at (default: debug).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) error {
		o.logLevel = &level
		return nil
	}
}

// WithNoLogParams omits query parameters from logged request lines. It may
// be overridden per request via [WithLogParams].
func WithNoLogParams() Option {
	return func(o *options) error {
		o.noLogParams = true
		return nil
	}
}

// RequestOption is a functional option for [Client.Request] and the verb
// helpers. The URL-affecting subset also drives [Client.URLFor].
type RequestOption func(*requestOpts) error

type requestOpts struct {
	params   url.Values
	absolute bool

	body        any
	rawBody     io.Reader
	contentType *string
	headers     map[string][]string
	cookies     []*http.Cookie

	dest       any
	useJSONNum bool

	raise     *bool
	noLog     bool
	logParams *bool
}

// WithParams appends query parameters to the request URL.
func WithParams(params map[string]string) RequestOption {
	return func(opts *requestOpts) error {
		if opts.params == nil {
			opts.params = url.Values{}
		}
		for k, v := range params {
			opts.params.Add(k, v)
		}

		return nil
	}
}

// WithParamValues appends multi-valued query parameters to the request URL.
func WithParamValues(params url.Values) RequestOption {
	return func(opts *requestOpts) error {
		if opts.params == nil {
			opts.params = url.Values{}
		}
		for k, values := range params {
			for _, v := range values {
				opts.params.Add(k, v)
			}
		}

		return nil
	}
}

// WithAbsolutePath bypasses the client's path prefix. A path that is
// already a full http(s) URL is used as-is.
func WithAbsolutePath() RequestOption {
	return func(opts *requestOpts) error {
		opts.absolute = true

		return nil
	}
}

// WithPayload sets the JSON-encoded request body. Content-Type defaults to
// "application/json" unless overridden via [WithContentType].
func WithPayload(body any) RequestOption {
	return func(opts *requestOpts) error {
		opts.body = body

		return nil
	}
}

// WithBody sets a raw request body with an explicit content type.
func WithBody(body io.Reader, contentType string) RequestOption {
	return func(opts *requestOpts) error {
		if body == nil {
			return errors.New("body must not be nil")
		}
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}

		opts.rawBody = body
		opts.contentType = &contentType

		return nil
	}
}

// WithContentType overrides the default "application/json" Content-Type header.
func WithContentType(contentType string) RequestOption {
	return func(opts *requestOpts) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}

		opts.contentType = &contentType

		return nil
	}
}

// WithHeaders adds custom headers to the outgoing request.
func WithHeaders(headers map[string][]string) RequestOption {
	return func(opts *requestOpts) error {
		opts.headers = headers

		return nil
	}
}

// WithCookies attaches the given cookies to the outgoing request.
func WithCookies(cookies ...*http.Cookie) RequestOption {
	return func(opts *requestOpts) error {
		opts.cookies = cookies

		return nil
	}
}

// WithResponseInto decodes the JSON response body into dest and closes the
// body. dest must be a pointer.
func WithResponseInto[T any](dest *T) RequestOption {
	return func(opts *requestOpts) error {
		opts.dest = dest

		return nil
	}
}

// WithJSONNumber tells the JSON decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumber() RequestOption {
	return func(opts *requestOpts) error {
		opts.useJSONNum = true

		return nil
	}
}

// WithRaiseErrors overrides the client's error-raising policy for this
// request only.
func WithRaiseErrors(raise bool) RequestOption {
	return func(opts *requestOpts) error {
		opts.raise = &raise

		return nil
	}
}

// WithNoLog suppresses the request log line for this request.
func WithNoLog() RequestOption {
	return func(opts *requestOpts) error {
		opts.noLog = true

		return nil
	}
}

// WithLogParams overrides the client's query-parameter logging setting for
// this request only.
func WithLogParams(logParams bool) RequestOption {
	return func(opts *requestOpts) error {
		opts.logParams = &logParams

		return nil
	}
}
