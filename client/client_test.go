package client_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hostbound/hostbound/client"
)

// testTarget rebinds a client constructor to an httptest server.
func testClient(t *testing.T, ts *httptest.Server, opts ...client.Option) *client.Client {
	t.Helper()

	c, err := client.New(ts.URL, opts...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(c.Close)

	return c
}

func drain(t *testing.T, resp *http.Response) {
	t.Helper()

	if resp != nil && resp.Body != nil {
		if err := resp.Body.Close(); err != nil {
			t.Errorf("closing response body: %v", err)
		}
	}
}

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_WithUserAgent(t *testing.T) {
	expectedUA := "TestUserAgent/1.0"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != expectedUA {
			t.Errorf("expected User-Agent %q, got %q", expectedUA, ua)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := testClient(t, ts, client.WithUserAgent(expectedUA))

	resp, err := c.Get(testContext(t), "/")
	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	drain(t, resp)
}

func TestClient_GeneratedUserAgent(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := testClient(t, ts)

	resp, err := c.Get(testContext(t), "/")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	drain(t, resp)

	if !strings.Contains(gotUA, "Hostbound/") {
		t.Errorf("expected generated User-Agent identifying the library, got %q", gotUA)
	}
}

func TestClient_UserAgentHeaderPreserved(t *testing.T) {
	// A caller-supplied User-Agent header suppresses generation.
	expectedUA := "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:72.0) Gecko/20100101 Firefox/72.0"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != expectedUA {
			t.Errorf("expected User-Agent %q, got %q", expectedUA, ua)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := testClient(t, ts, client.WithDefaultHeaders(map[string]string{"User-Agent": expectedUA}))

	resp, err := c.Get(testContext(t), "/")
	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	drain(t, resp)
}

func TestClient_WithNoUserAgent(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := testClient(t, ts, client.WithNoUserAgent())

	resp, err := c.Get(testContext(t), "/")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	drain(t, resp)

	if strings.Contains(gotUA, "Hostbound/") {
		t.Errorf("expected no generated User-Agent, got %q", gotUA)
	}
}

func TestClient_DefaultHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "sessionkey" {
			t.Errorf("expected session header, got %q", got)
		}
		// Per-request headers win over persistent ones.
		if got := r.Header.Get("Accept"); got != "application/xml" {
			t.Errorf("expected per-request Accept to win, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := testClient(t, ts, client.WithDefaultHeaders(map[string]string{
		"X-Api-Key": "sessionkey",
		"Accept":    "application/json",
	}))

	resp, err := c.Get(testContext(t), "/",
		client.WithHeaders(map[string][]string{"Accept": {"application/xml"}}),
	)
	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	drain(t, resp)
}

func TestClient_WithTransport(t *testing.T) {
	var called bool
	custom := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return http.DefaultTransport.RoundTrip(r)
	})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := testClient(t, ts, client.WithTransport(custom))

	resp, err := c.Get(testContext(t), "/")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	drain(t, resp)

	if !called {
		t.Error("expected custom transport to be used")
	}
}

func TestClient_WithNoFollowRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/other", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := testClient(t, ts, client.WithNoFollowRedirects())

	resp, err := c.Get(testContext(t), "/")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	defer drain(t, resp)

	if resp.StatusCode != http.StatusFound {
		t.Errorf("expected 302 to be returned directly, got %d", resp.StatusCode)
	}
}

func TestClient_WithRequestID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			t.Error("expected X-Request-Id header")
		}
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("expected X-Request-Id to be a UUID, got %q: %v", id, err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := testClient(t, ts, client.WithRequestID())

	resp, err := c.Get(testContext(t), "/")
	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	drain(t, resp)
}

func TestClient_WithRequestID_CallerValueWins(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-Id"); id != "caller-set" {
			t.Errorf("expected caller-set request ID, got %q", id)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := testClient(t, ts, client.WithRequestID())

	resp, err := c.Get(testContext(t), "/",
		client.WithHeaders(map[string][]string{"X-Request-Id": {"caller-set"}}),
	)
	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	drain(t, resp)
}

func TestClient_WithTracer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	tracer := noop.NewTracerProvider().Tracer("test")
	c := testClient(t, ts, client.WithTracer(tracer))

	resp, err := c.Get(testContext(t), "/")
	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	drain(t, resp)
}

func TestClient_WithRateLimit_SpacesRequests(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	interval := 50 * time.Millisecond
	c := testClient(t, ts, client.WithRateLimit(interval))

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := c.Get(testContext(t), "/")
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		drain(t, resp)
	}

	// First request is immediate; the following two wait ~50ms each.
	if elapsed := time.Since(start); elapsed < 2*interval {
		t.Errorf("expected requests spaced >= %v apart, finished in %v", interval, elapsed)
	}
}

func TestClient_WithThrottleAndUserAgent(t *testing.T) {
	expectedUA := "ThrottledAgent/1.0"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != expectedUA {
			t.Errorf("expected User-Agent %q, got %q", expectedUA, ua)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	// WithThrottle applied before WithUserAgent — order shouldn't matter.
	c := testClient(t, ts,
		client.WithThrottle(100, 10),
		client.WithUserAgent(expectedUA),
	)

	resp, err := c.Get(testContext(t), "/")
	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	drain(t, resp)
}

func TestClient_OptionErrors(t *testing.T) {
	testCases := []struct {
		name string
		opt  client.Option
	}{
		{name: "nil http client", opt: client.WithHTTPClient(nil)},
		{name: "nil transport", opt: client.WithTransport(nil)},
		{name: "negative timeout", opt: client.WithTimeout(-time.Second)},
		{name: "zero rate limit", opt: client.WithRateLimit(0)},
		{name: "zero throttle", opt: client.WithThrottle(0, 0)},
		{name: "empty scheme", opt: client.WithScheme("")},
		{name: "port out of range", opt: client.WithPort(70000)},
		{name: "nil logger", opt: client.WithLogger(nil)},
		{name: "nil tracer", opt: client.WithTracer(nil)},
		{name: "nil error hook", opt: client.WithErrorHook(nil)},
		{name: "nil tls config", opt: client.WithTLSConfig(nil)},
		{name: "empty user agent format", opt: client.WithUserAgentFormat("")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := client.New("localhost", tc.opt); err == nil {
				t.Error("expected an option error")
			}
		})
	}
}

func TestClient_TransportAndTLSConflict(t *testing.T) {
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("unused")
	})

	if _, err := client.New("localhost", client.WithTransport(rt), client.WithInsecureTLS()); err == nil {
		t.Error("expected WithTransport + WithInsecureTLS to be rejected")
	}
}

func TestClient_WithInsecureTLS(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}

	// The httptest TLS server uses a self-signed certificate, so the
	// request only succeeds when verification is skipped.
	c, err := client.New(ts.URL, client.WithInsecureTLS())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer c.Close()

	resp, err := c.Get(testContext(t), "/")
	if err != nil {
		t.Fatalf("expected insecure request to %s to succeed, got: %v", u.Host, err)
	}
	drain(t, resp)

	strict, err := client.New(ts.URL)
	if err != nil {
		t.Fatalf("failed to create strict client: %v", err)
	}
	defer strict.Close()

	if resp, err := strict.Get(testContext(t), "/"); err == nil {
		drain(t, resp)
		t.Error("expected certificate verification failure without WithInsecureTLS")
	}
}

func TestClient_Concurrency(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer ts.Close()

	c := testClient(t, ts)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			resp, err := c.Get(testContext(t), "/")
			if resp != nil {
				resp.Body.Close()
			}
			done <- err
		}()
	}

	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent request failed: %v", err)
		}
	}
}
