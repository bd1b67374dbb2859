package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Request builds and dispatches a request for the given endpoint path using
// the given HTTP method. The response body is open unless [WithResponseInto]
// consumed it; callers are responsible for closing it.
//
// When the error-raising policy is active (the default, see
// [WithNoRaiseErrors] and [WithRaiseErrors]), a 4xx/5xx response is drained
// and converted into a *StatusError. Transport-level failures are wrapped
// with the method and URL. Both pass through the hook configured via
// [WithErrorHook], if any.
func (c *Client) Request(ctx context.Context, method, path string, opts ...RequestOption) (*http.Response, error) {
	var settings requestOpts
	for _, opt := range opts {
		if err := opt(&settings); err != nil {
			return nil, err
		}
	}

	reqURL := c.urlFor(path, &settings)
	c.logRequest(ctx, method, reqURL, &settings)

	req, err := c.newRequest(ctx, method, reqURL, &settings)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, c.wrapErr(fmt.Errorf("%s %s: %w", method, reqURL, err), reqURL.String())
	}

	if c.shouldRaise(settings.raise) && resp.StatusCode >= http.StatusBadRequest {
		return nil, c.wrapErr(newStatusError(resp, reqURL.String()), reqURL.String())
	}

	if settings.dest != nil {
		if err := decodeInto(resp, &settings); err != nil {
			return nil, fmt.Errorf("decoding body: %w", err)
		}
	}

	return resp, nil
}

// Get submits a GET request for the given endpoint path.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, path, opts...)
}

// Put submits a PUT request for the given endpoint path.
func (c *Client) Put(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodPut, path, opts...)
}

// Post submits a POST request for the given endpoint path.
func (c *Client) Post(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodPost, path, opts...)
}

// Delete submits a DELETE request for the given endpoint path.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodDelete, path, opts...)
}

// Options submits an OPTIONS request for the given endpoint path.
func (c *Client) Options(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodOptions, path, opts...)
}

// Head submits a HEAD request for the given endpoint path.
func (c *Client) Head(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodHead, path, opts...)
}

// Patch submits a PATCH request for the given endpoint path.
func (c *Client) Patch(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodPatch, path, opts...)
}

// newRequest instantiates the *http.Request, applying body, cookies, and
// per-request headers.
func (c *Client) newRequest(ctx context.Context, method string, reqURL *url.URL, settings *requestOpts) (*http.Request, error) {
	body := settings.rawBody
	if body == nil && settings.body != nil {
		var payload bytes.Buffer
		if err := json.NewEncoder(&payload).Encode(settings.body); err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
		body = &payload
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for _, cookie := range settings.cookies {
		req.AddCookie(cookie)
	}

	switch {
	case settings.contentType != nil:
		req.Header.Set("Content-Type", *settings.contentType)
	case settings.body != nil:
		req.Header.Set("Content-Type", "application/json")
	}

	for k, values := range settings.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	return req, nil
}

// logRequest emits the "METHOD -> URL" line at the configured level. Query
// parameters are stripped from the logged URL when parameter logging is off.
func (c *Client) logRequest(ctx context.Context, method string, reqURL *url.URL, settings *requestOpts) {
	if settings.noLog || !c.logger.Enabled(ctx, c.logLevel) {
		return
	}

	logParams := c.logParams
	if settings.logParams != nil {
		logParams = *settings.logParams
	}

	u := *reqURL
	if !logParams {
		u.RawQuery = ""
	}

	c.logger.Log(ctx, c.logLevel, fmt.Sprintf("%s -> %s", method, u.String()))
}

func (c *Client) shouldRaise(override *bool) bool {
	if override != nil {
		return *override
	}

	return c.raise
}

func (c *Client) wrapErr(err error, url string) error {
	if c.errHook != nil {
		return c.errHook(err, url)
	}

	return err
}

// decodeInto decodes the JSON response body into the configured
// destination, draining and closing the body.
func decodeInto(resp *http.Response, settings *requestOpts) error {
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	d := json.NewDecoder(resp.Body)
	if settings.useJSONNum {
		d.UseNumber()
	}

	return d.Decode(settings.dest)
}
