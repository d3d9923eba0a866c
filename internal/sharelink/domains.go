package sharelink

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/evolvesprouts/backend/internal/validation"
)

// MaxAllowedDomains bounds the per-link source-domain allowlist.
const MaxAllowedDomains = 20

var hostnamePattern = regexp.MustCompile(
	`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])$`,
)

// NormalizeAllowedDomains validates and normalizes a share-link domain
// allowlist. Entries may be bare hostnames or full URLs; each is reduced
// to a lowercase hostname. Duplicates collapse silently, keeping
// first-occurrence order.
func NormalizeAllowedDomains(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, validation.NewError("allowed_domains",
			"allowed_domains must include at least one domain")
	}
	if len(raw) > MaxAllowedDomains {
		return nil, validation.NewError("allowed_domains",
			"allowed_domains supports up to %d entries", MaxAllowedDomains)
	}

	var normalized []string
	seen := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		domain := domainFromURL(entry)
		if domain == "" {
			return nil, validation.NewError("allowed_domains",
				"allowed_domains entries must be valid hostnames")
		}
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}
		normalized = append(normalized, domain)
	}

	if len(normalized) == 0 {
		return nil, validation.NewError("allowed_domains",
			"allowed_domains must include at least one valid domain")
	}
	return normalized, nil
}

// ResolveDefaultAllowedDomains parses the configured comma-separated
// default allowlist. Having no explicit configuration is a fatal error:
// the default domains gate publicly embeddable links and must never be
// silently assumed.
func ResolveDefaultAllowedDomains(configured string) ([]string, error) {
	trimmed := strings.TrimSpace(configured)
	if trimmed == "" {
		return nil, fmt.Errorf("share link default allowed domains are not configured")
	}

	var raw []string
	for _, part := range strings.Split(trimmed, ",") {
		if part = strings.TrimSpace(part); part != "" {
			raw = append(raw, part)
		}
	}

	domains, err := NormalizeAllowedDomains(raw)
	if err != nil {
		return nil, fmt.Errorf("share link default allowed domains must be valid hostnames: %w", err)
	}
	return domains, nil
}

// ExtractSourceDomain returns the request's source domain inferred from
// the Referer (checked first) or Origin header, normalized the same way
// as allowlist entries. It returns "" when neither header yields a
// usable hostname; it never fails.
func ExtractSourceDomain(headers http.Header) string {
	for _, name := range []string{"Referer", "Referrer", "Origin"} {
		if domain := domainFromURL(headerValue(headers, name)); domain != "" {
			return domain
		}
	}
	return ""
}

// DomainAllowed reports whether the source domain is present in the
// link's allowlist.
func DomainAllowed(sourceDomain string, allowed []string) bool {
	if sourceDomain == "" {
		return false
	}
	for _, domain := range allowed {
		if domain == sourceDomain {
			return true
		}
	}
	return false
}

// domainFromURL reduces a URL or bare hostname to a validated lowercase
// hostname, or "" when the input does not contain one.
func domainFromURL(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	parsed, err := url.Parse(trimmed)
	host := ""
	if err == nil {
		host = parsed.Hostname()
	}
	if host == "" && !strings.Contains(trimmed, "://") {
		if parsed, err = url.Parse("https://" + trimmed); err == nil {
			host = parsed.Hostname()
		}
	}
	if host == "" {
		return ""
	}

	normalized := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if normalized == "localhost" {
		return normalized
	}
	if len(normalized) > 253 || !hostnamePattern.MatchString(normalized) {
		return ""
	}
	return normalized
}

// headerValue performs a case-insensitive header lookup. http.Header.Get
// only matches canonical keys, but upstream proxies hand us headers with
// arbitrary casing.
func headerValue(headers http.Header, name string) string {
	if value := headers.Get(name); value != "" {
		return value
	}
	for key, values := range headers {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
