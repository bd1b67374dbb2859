package client

import (
	"os"
	"strings"
)

// NoProxyAppend adds the given host to the no_proxy environment variable if
// it is not already present. The net/http proxy resolver consults this
// variable, so appending a host here disables proxying for requests to it.
// Must be called before the first request; the resolver caches the
// environment after first use.
func NoProxyAppend(host string) {
	current := os.Getenv("no_proxy")
	if current == "" {
		os.Setenv("no_proxy", host)
		return
	}

	for _, entry := range strings.Split(current, ",") {
		if strings.TrimSpace(entry) == host {
			return
		}
	}

	os.Setenv("no_proxy", current+","+host)
}
