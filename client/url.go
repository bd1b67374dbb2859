package client

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// target holds the backend coordinates every request URL is composed from.
type target struct {
	Scheme     string `json:"scheme" validate:"required,alpha"`
	Host       string `json:"host" validate:"omitempty,hostname_rfc1123|ip"`
	Port       int    `json:"port" validate:"min=0,max=65535"`
	PathPrefix string `json:"path_prefix"`
}

// schemeRE detects strings that begin with a URI scheme. Anything that
// matches is treated as a full URL rather than a bare host.
var schemeRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// parseTarget derives the backend target from a hostname, host:port, or
// full URL, applying option overrides on top of the derived parts.
func parseTarget(hostOrURL string, o *options) (target, error) {
	var tgt target

	scheme := o.scheme
	port := o.port
	prefix := o.pathPrefix

	if schemeRE.MatchString(hostOrURL) {
		parsed, err := url.Parse(hostOrURL)
		if err != nil {
			return tgt, fmt.Errorf("parsing base url: %w", err)
		}

		tgt.Host = parsed.Hostname()
		if port == 0 {
			if p := parsed.Port(); p != "" {
				port, err = strconv.Atoi(p)
				if err != nil {
					return tgt, fmt.Errorf("parsing base url port: %w", err)
				}
			}
		}
		if scheme == "" {
			scheme = parsed.Scheme
		}
		if prefix == "" && !o.noPath {
			prefix = parsed.Path
		}
	} else {
		host := hostOrURL
		if h, p, err := net.SplitHostPort(hostOrURL); err == nil && p != "" {
			if port != 0 {
				return tgt, fmt.Errorf("%w (host=%q, port=%d)", ErrConflictingPort, hostOrURL, port)
			}

			host = h
			port, err = strconv.Atoi(p)
			if err != nil {
				return tgt, fmt.Errorf("parsing host port: %w", err)
			}
		}
		tgt.Host = host
	}

	if scheme == "" {
		scheme = "http"
	}

	tgt.Scheme = scheme
	tgt.Port = port
	tgt.PathPrefix = formatPathPrefix(prefix)

	return tgt, nil
}

// formatPathPrefix normalizes a path prefix to have no leading slash and
// exactly one trailing slash. An empty prefix stays empty.
func formatPathPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}

	prefix = strings.TrimPrefix(prefix, "/")
	if prefix == "" {
		return ""
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return prefix
}

// URLFor composes the full URL for the given endpoint path. Relative paths
// (the default) are joined under the client's path prefix; [WithAbsolutePath]
// bypasses the prefix, and a path that is already a full http(s) URL is
// passed through unchanged when absolute. Only the URL-affecting request
// options ([WithParams], [WithParamValues], [WithAbsolutePath]) are honored.
func (c *Client) URLFor(path string, opts ...RequestOption) *url.URL {
	var settings requestOpts
	for _, opt := range opts {
		_ = opt(&settings)
	}

	return c.urlFor(path, &settings)
}

func (c *Client) urlFor(path string, settings *requestOpts) *url.URL {
	if settings.absolute && (strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")) {
		if u, err := url.Parse(path); err == nil {
			return withQuery(u, settings.params)
		}
	}

	path = strings.TrimPrefix(path, "/")
	if !settings.absolute {
		path = c.pathPrefix + path
	}

	u := &url.URL{
		Scheme: c.scheme,
		Host:   c.hostPort(),
		Path:   "/" + path,
	}

	return withQuery(u, settings.params)
}

func (c *Client) hostPort() string {
	if c.port != 0 {
		return net.JoinHostPort(c.host, strconv.Itoa(c.port))
	}

	return c.host
}

func withQuery(u *url.URL, params url.Values) *url.URL {
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	return u
}
