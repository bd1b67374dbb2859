// Package hostbound builds HTTP clients bound to a common backend
// host/endpoint pattern, useful for RESTful applications that submit many
// requests for different endpoints to the same server.
//
// The root package re-exports the client builder; see
// [github.com/hostbound/hostbound/client] for the full API and
// [github.com/hostbound/hostbound/useragent] for User-Agent generation.
//
//	c, err := hostbound.New("https://api.example.com:8443/v2",
//		client.WithRateLimit(500*time.Millisecond),
//	)
//	if err != nil { ... }
//	defer c.Close()
//
//	resp, err := c.Get(ctx, "/status")
package hostbound
