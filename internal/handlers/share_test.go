package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evolvesprouts/backend/internal/assets"
	"github.com/evolvesprouts/backend/internal/identity"
	"github.com/evolvesprouts/backend/internal/models"
	"github.com/evolvesprouts/backend/internal/repositories"
)

type stubShareResolver struct {
	ticket models.DownloadTicket
	err    error

	gotToken  string
	gotDomain string
	gotID     identity.Identity
}

func (s *stubShareResolver) ResolveShareToken(_ context.Context, token, sourceDomain string, id identity.Identity) (models.DownloadTicket, error) {
	s.gotToken = token
	s.gotDomain = sourceDomain
	s.gotID = id
	if s.err != nil {
		return models.DownloadTicket{}, s.err
	}
	return s.ticket, nil
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func shareRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/assets/share/"+token, nil)
	r.SetPathValue("token", token)
	return r
}

func TestShareHandlerRedirect(t *testing.T) {
	resolver := &stubShareResolver{ticket: models.DownloadTicket{
		URL:       "https://cdn.example.com/assets/a-1/file.pdf?Signature=abc",
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	handler := ShareHandler{Shares: resolver}

	token := strings.Repeat("t", 32)
	req := shareRequest(token)
	req.Header.Set("Referer", "https://partners.example.com/library")
	req = req.WithContext(identity.WithIdentity(req.Context(), identity.Identity{Subject: "u-1"}))
	rec := httptest.NewRecorder()

	handler.Redirect(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected status %d got %d", http.StatusFound, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != resolver.ticket.URL {
		t.Fatalf("expected Location %q got %q", resolver.ticket.URL, got)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Fatalf("expected no-store Cache-Control got %q", cc)
	}
	if rec.Header().Get("Pragma") != "no-cache" {
		t.Fatal("expected Pragma no-cache header")
	}

	if resolver.gotToken != token {
		t.Fatalf("expected token %q got %q", token, resolver.gotToken)
	}
	if resolver.gotDomain != "partners.example.com" {
		t.Fatalf("expected source domain from Referer, got %q", resolver.gotDomain)
	}
	if resolver.gotID.Subject != "u-1" {
		t.Fatalf("expected caller identity to be forwarded, got %+v", resolver.gotID)
	}
}

func TestShareHandlerErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown token", repositories.ErrNotFound, http.StatusNotFound},
		{"domain rejected", assets.ErrForbidden, http.StatusForbidden},
		{"restricted anonymous", assets.ErrUnauthenticated, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := ShareHandler{Shares: &stubShareResolver{err: tc.err}}
			rec := httptest.NewRecorder()

			handler.Redirect(rec, shareRequest(strings.Repeat("t", 32)))

			if rec.Code != tc.status {
				t.Fatalf("expected status %d got %d", tc.status, rec.Code)
			}
			if rec.Header().Get("Location") != "" {
				t.Fatal("expected no Location header on failure")
			}
		})
	}
}

func TestShareHandlerRateLimited(t *testing.T) {
	handler := ShareHandler{Shares: &stubShareResolver{}, Limiter: denyAllLimiter{}}
	rec := httptest.NewRecorder()

	handler.Redirect(rec, shareRequest(strings.Repeat("t", 32)))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d got %d", http.StatusTooManyRequests, rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"forwarded header wins", "203.0.113.9, 10.0.0.1", "10.0.0.2:443", "203.0.113.9"},
		{"remote addr fallback", "", "192.0.2.4:51234", "192.0.2.4"},
		{"remote addr without port", "", "192.0.2.4", "192.0.2.4"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			r.RemoteAddr = tc.remoteAddr
			if got := clientIP(r); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}
