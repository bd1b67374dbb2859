// Package client provides an HTTP client bound to a single backend server,
// simplifying the submission of multiple requests for different endpoints.
//
// # Building a Client
//
// Use [New] with a hostname, host:port, or full URL, plus functional
// options:
//
//	c, err := client.New("https://api.example.com/v1",
//		client.WithTimeout(10*time.Second),
//		client.WithRateLimit(time.Second),
//	)
//
// When a full URL is given, the scheme, host, port, and path prefix are
// derived from it. The path prefix is prepended to every relative request
// path.
//
// # Making Requests
//
// The verb helpers compose the full URL from the endpoint path and
// dispatch the request:
//
//	resp, err := c.Get(ctx, "/users", client.WithParams(map[string]string{"page": "2"}))
//
// JSON responses can be decoded directly:
//
//	var users []User
//	resp, err := c.Get(ctx, "/users", client.WithResponseInto(&users))
//
// By default a 4xx/5xx response is converted into a *StatusError carrying
// the status code, URL, and a snippet of the body:
//
//	var statusErr *client.StatusError
//	if errors.As(err, &statusErr) {
//		fmt.Println(statusErr.StatusCode)
//	}
//
// # Observability
//
// Request lines are logged through a [log/slog] logger at a configurable
// level. [WithTracer] adds OpenTelemetry spans and context propagation,
// and [WithRequestID] stamps outgoing requests with UUID correlation IDs.
package client
