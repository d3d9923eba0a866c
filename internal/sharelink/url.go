package sharelink

import (
	"fmt"
	"net/http"
	"strings"
)

// PathPrefix is the public route prefix that share tokens hang off.
const PathPrefix = "/api/v1/assets/share"

// BuildShareURL builds the stable public URL for a share token. When a
// base URL is configured it wins; otherwise the scheme, host, and any
// gateway stage prefix are derived from the inbound request's forwarding
// headers. A request without a Host is a configuration error.
func BuildShareURL(baseURL string, r *http.Request, token string) (string, error) {
	if configured := strings.TrimRight(strings.TrimSpace(baseURL), "/"); configured != "" {
		return configured + PathPrefix + "/" + token, nil
	}

	base, err := deriveRequestBase(r)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(base, "/") + PathPrefix + "/" + token, nil
}

// deriveRequestBase reconstructs scheme://host plus the gateway stage
// prefix. The gateway reports its full request path via X-Forwarded-Path;
// the stage prefix is whatever precedes the path this service saw.
func deriveRequestBase(r *http.Request) (string, error) {
	if r == nil {
		return "", fmt.Errorf("request is required to build share links")
	}

	host := strings.TrimSpace(r.Host)
	if host == "" {
		host = strings.TrimSpace(headerValue(r.Header, "Host"))
	}
	if host == "" {
		return "", fmt.Errorf("host header is required to build share links")
	}

	scheme := strings.TrimSpace(headerValue(r.Header, "X-Forwarded-Proto"))
	if scheme == "" {
		scheme = "https"
	}

	basePath := ""
	gatewayPath := strings.TrimSpace(headerValue(r.Header, "X-Forwarded-Path"))
	requestPath := r.URL.Path
	if gatewayPath != "" && requestPath != "" && strings.HasSuffix(gatewayPath, requestPath) {
		basePath = gatewayPath[:len(gatewayPath)-len(requestPath)]
	}

	return fmt.Sprintf("%s://%s%s", scheme, host, basePath), nil
}
