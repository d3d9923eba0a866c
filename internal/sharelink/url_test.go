package sharelink

import (
	"net/http/httptest"
	"testing"
)

func TestBuildShareURLWithConfiguredBase(t *testing.T) {
	url, err := BuildShareURL("https://links.example.com/", nil, "token-1234567890abcdefghij")
	if err != nil {
		t.Fatalf("build share url: %v", err)
	}
	want := "https://links.example.com/api/v1/assets/share/token-1234567890abcdefghij"
	if url != want {
		t.Fatalf("expected %q got %q", want, url)
	}
}

func TestBuildShareURLFromRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/admin/assets/abc/share-link", nil)
	r.Host = "api.example.com"

	url, err := BuildShareURL("", r, "tok")
	if err != nil {
		t.Fatalf("build share url: %v", err)
	}
	if want := "https://api.example.com/api/v1/assets/share/tok"; url != want {
		t.Fatalf("expected %q got %q", want, url)
	}
}

func TestBuildShareURLHonorsForwardingHeaders(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/admin/assets/abc/share-link", nil)
	r.Host = "api.example.com"
	r.Header.Set("X-Forwarded-Proto", "http")
	r.Header.Set("X-Forwarded-Path", "/prod/api/v1/admin/assets/abc/share-link")

	url, err := BuildShareURL("", r, "tok")
	if err != nil {
		t.Fatalf("build share url: %v", err)
	}
	if want := "http://api.example.com/prod/api/v1/assets/share/tok"; url != want {
		t.Fatalf("expected %q got %q", want, url)
	}
}

func TestBuildShareURLIgnoresUnrelatedForwardedPath(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/admin/assets/abc/share-link", nil)
	r.Host = "api.example.com"
	r.Header.Set("X-Forwarded-Path", "/elsewhere/entirely")

	url, err := BuildShareURL("", r, "tok")
	if err != nil {
		t.Fatalf("build share url: %v", err)
	}
	if want := "https://api.example.com/api/v1/assets/share/tok"; url != want {
		t.Fatalf("expected %q got %q", want, url)
	}
}

func TestBuildShareURLRequiresHost(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/admin/assets/abc/share-link", nil)
	r.Host = ""

	if _, err := BuildShareURL("", r, "tok"); err == nil {
		t.Fatal("expected error without a host")
	}
	if _, err := BuildShareURL("", nil, "tok"); err == nil {
		t.Fatal("expected error without a request")
	}
}
