package sharelink

import (
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/evolvesprouts/backend/internal/validation"
)

func TestNormalizeAllowedDomains(t *testing.T) {
	cases := []struct {
		name    string
		raw     []string
		want    []string
		wantErr bool
	}{
		{"bare hostname", []string{"example.com"}, []string{"example.com"}, false},
		{"full url reduced", []string{"https://Example.com/path?q=1"}, []string{"example.com"}, false},
		{"case folds and dedupes", []string{"Example.COM", "example.com", "app.example.com"}, []string{"example.com", "app.example.com"}, false},
		{"trailing dot stripped", []string{"example.com."}, []string{"example.com"}, false},
		{"localhost allowed", []string{"localhost"}, []string{"localhost"}, false},
		{"empty list", nil, nil, true},
		{"not a domain", []string{"not a domain"}, nil, true},
		{"bare single label", []string{"intranet"}, nil, true},
		{"too many entries", make([]string, MaxAllowedDomains+1), nil, true},
	}

	for i := range cases[len(cases)-1].raw {
		cases[len(cases)-1].raw[i] = "example.com"
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeAllowedDomains(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				if _, ok := validation.AsError(err); !ok {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestNormalizeAllowedDomainsRejectsLongHostnames(t *testing.T) {
	label := strings.Repeat("a", 64)
	if _, err := NormalizeAllowedDomains([]string{label + ".com"}); err == nil {
		t.Fatal("expected error for 64-character label")
	}

	long := strings.Repeat(strings.Repeat("a", 61)+".", 5) + "com"
	if _, err := NormalizeAllowedDomains([]string{long}); err == nil {
		t.Fatal("expected error for hostname over 253 characters")
	}
}

func TestResolveDefaultAllowedDomains(t *testing.T) {
	domains, err := ResolveDefaultAllowedDomains(" example.com , App.Example.com ")
	if err != nil {
		t.Fatalf("resolve defaults: %v", err)
	}
	if want := []string{"example.com", "app.example.com"}; !reflect.DeepEqual(domains, want) {
		t.Fatalf("expected %v got %v", want, domains)
	}

	if _, err := ResolveDefaultAllowedDomains(""); err == nil {
		t.Fatal("expected error when defaults are not configured")
	}
	if _, err := ResolveDefaultAllowedDomains("not a domain"); err == nil {
		t.Fatal("expected error for invalid configured defaults")
	}
}

func TestExtractSourceDomain(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"referer wins", map[string]string{"Referer": "https://a.example.com/page", "Origin": "https://b.example.com"}, "a.example.com"},
		{"referrer spelling", map[string]string{"Referrer": "https://c.example.com"}, "c.example.com"},
		{"origin fallback", map[string]string{"Origin": "https://b.example.com"}, "b.example.com"},
		{"unparseable referer falls through", map[string]string{"Referer": "::::", "Origin": "https://b.example.com"}, "b.example.com"},
		{"no headers", nil, ""},
		{"bare host", map[string]string{"Origin": "example.com"}, "example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			headers := http.Header{}
			for name, value := range tc.headers {
				headers.Set(name, value)
			}
			if got := ExtractSourceDomain(headers); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func TestExtractSourceDomainNonCanonicalHeaderKey(t *testing.T) {
	headers := http.Header{"referer": []string{"https://a.example.com/page"}}
	if got := ExtractSourceDomain(headers); got != "a.example.com" {
		t.Fatalf("expected a.example.com got %q", got)
	}
}

func TestDomainAllowed(t *testing.T) {
	allowed := []string{"example.com", "app.example.com"}

	if !DomainAllowed("example.com", allowed) {
		t.Fatal("expected listed domain to be allowed")
	}
	if DomainAllowed("evil.example.org", allowed) {
		t.Fatal("expected unlisted domain to be rejected")
	}
	if DomainAllowed("", allowed) {
		t.Fatal("expected missing source domain to be rejected")
	}
	if DomainAllowed("sub.example.com", allowed) {
		t.Fatal("allowlist matching must be exact, not suffix-based")
	}
}
