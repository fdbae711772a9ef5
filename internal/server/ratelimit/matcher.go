package ratelimit

import (
	"net/http"
	"strings"
)

// MatchEndpoint returns the configuration for a request, or nil to use the
// default limit. Health checks and CORS preflights are unlimited. Config
// paths ending in "/" match by prefix.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if (path == "/health" && method == http.MethodGet) || method == http.MethodOptions {
		return &EndpointConfig{}
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}
