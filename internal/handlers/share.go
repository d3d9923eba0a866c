package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/evolvesprouts/backend/internal/identity"
	"github.com/evolvesprouts/backend/internal/sharelink"
)

// RateLimiter is the minimal interface required to throttle the share
// endpoint, which is reachable without credentials.
type RateLimiter interface {
	Allow(key string) bool
}

// ShareHandler redirects stable share tokens to short-lived signed URLs.
type ShareHandler struct {
	Shares  ShareResolver
	Limiter RateLimiter
}

// Redirect handles GET /api/v1/assets/share/{token}. On success it
// answers 302 with the signed URL in Location; the redirect itself is
// a credential and must never be cached by intermediaries.
func (h ShareHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Limiter != nil && !h.Limiter.Allow("share:"+clientIP(r)) {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
		return
	}

	token := r.PathValue("token")
	sourceDomain := sharelink.ExtractSourceDomain(r.Header)
	caller := identity.FromContext(ctx)

	ticket, err := h.Shares.ResolveShareToken(ctx, token, sourceDomain, caller)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	setNoCacheHeaders(w)
	w.Header().Set("Location", ticket.URL)
	w.WriteHeader(http.StatusFound)
}

// clientIP prefers the first forwarded hop so limits apply to the real
// caller rather than the gateway in front of the service.
func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
