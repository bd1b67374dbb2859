package client

import (
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// requestIDHeader is stamped by the transport enabled via [WithRequestID].
const requestIDHeader = "X-Request-Id"

// headerTransport is an http.RoundTripper applying the client's persistent
// headers to every outgoing request. Headers already set on an individual
// request are never clobbered.
type headerTransport struct {
	headers http.Header
	base    http.RoundTripper
}

func (t headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	for key, values := range t.headers {
		if cpy.Header.Get(key) != "" {
			continue
		}
		for _, v := range values {
			cpy.Header.Add(key, v)
		}
	}

	return t.base.RoundTrip(cpy)
}

// requestIDTransport stamps each outgoing request with a fresh UUID in the
// X-Request-Id header, unless the caller already set one.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t requestIDTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get(requestIDHeader) != "" {
		return t.base.RoundTrip(r)
	}

	cpy := r.Clone(r.Context())
	cpy.Header.Set(requestIDHeader, uuid.NewString())

	return t.base.RoundTrip(cpy)
}

// traceTransport opens an OpenTelemetry span around each request and
// injects W3C trace context headers via the global propagator.
type traceTransport struct {
	tracer trace.Tracer
	base   http.RoundTripper
}

func (t traceTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx, span := t.tracer.Start(r.Context(), "client.request", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("http.request.method", r.Method),
		attribute.String("server.address", r.URL.Host),
		attribute.String("url.path", r.URL.Path),
	)

	cpy := r.Clone(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(cpy.Header))

	resp, err := t.base.RoundTrip(cpy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return resp, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}

	return resp, nil
}
