// Package signing mints CloudFront signed download URLs for asset keys.
//
// Download links back stable share links and authenticated downloads, so
// they are long-lived by design; the short-lived credential here is the
// signing key itself, which is fetched from Secrets Manager and cached
// for a bounded interval.
package signing

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/cloudfront/sign"
)

const (
	// DefaultCacheTTL bounds how long a loaded signing key is reused
	// before Secrets Manager is consulted again.
	DefaultCacheTTL = 5 * time.Minute

	minCacheTTL = 30 * time.Second
	maxCacheTTL = time.Hour
)

// privateKeyFields are the secret payload fields accepted for the PEM key.
var privateKeyFields = []string{"private_key_pem", "privateKeyPem", "private_key"}

// SecretSource supplies JSON secret payloads by reference.
type SecretSource interface {
	SecretJSON(ctx context.Context, secretRef string) (map[string]any, error)
}

// Config carries the signing dependencies sourced from the environment.
// All three identifiers are required; their absence is reported when a
// URL is requested rather than silently defaulted.
type Config struct {
	DistributionDomain  string
	KeyPairID           string
	PrivateKeySecretRef string
	CacheTTL            time.Duration
}

type cachedSigner struct {
	cacheKey string
	loadedAt time.Time
	signer   *sign.URLSigner
}

// CloudFrontSigner signs download URLs with the distribution's RSA key.
// The loaded key is cached per (key-pair id, secret reference) with a TTL
// so rotation is picked up without a secret fetch on every request.
type CloudFrontSigner struct {
	cfg     Config
	secrets SecretSource
	now     func() time.Time

	mu     sync.RWMutex
	cached *cachedSigner
}

// NewCloudFrontSigner constructs a signer backed by the given secret source.
func NewCloudFrontSigner(cfg Config, secrets SecretSource) *CloudFrontSigner {
	return &CloudFrontSigner{
		cfg:     cfg,
		secrets: secrets,
		now:     time.Now,
	}
}

// SignDownloadURL returns a signed GET URL for the object key, valid until
// expiresAt. The zero time and non-future instants are caller errors.
func (s *CloudFrontSigner) SignDownloadURL(ctx context.Context, s3Key string, expiresAt time.Time) (string, error) {
	if expiresAt.IsZero() {
		return "", fmt.Errorf("download expiry must be set")
	}
	if !expiresAt.After(s.now()) {
		return "", fmt.Errorf("download expiry must be in the future")
	}

	domain := strings.TrimSpace(s.cfg.DistributionDomain)
	keyPairID := strings.TrimSpace(s.cfg.KeyPairID)
	secretRef := strings.TrimSpace(s.cfg.PrivateKeySecretRef)
	switch {
	case domain == "":
		return "", fmt.Errorf("cloudfront distribution domain is not configured")
	case keyPairID == "":
		return "", fmt.Errorf("cloudfront key pair id is not configured")
	case secretRef == "":
		return "", fmt.Errorf("cloudfront private key secret reference is not configured")
	}

	normalizedKey := strings.TrimLeft(strings.TrimSpace(s3Key), "/")
	if normalizedKey == "" {
		return "", fmt.Errorf("object key is required for signed download URL")
	}

	signer, err := s.signer(ctx, keyPairID, secretRef)
	if err != nil {
		return "", err
	}

	resource := (&url.URL{Scheme: "https", Host: domain, Path: "/" + normalizedKey}).String()
	signedURL, err := signer.Sign(resource, expiresAt)
	if err != nil {
		return "", fmt.Errorf("sign download url for %s: %w", normalizedKey, err)
	}
	return signedURL, nil
}

// Invalidate drops the cached signer so the next request reloads the key.
// Used by key-rotation flows and tests.
func (s *CloudFrontSigner) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// signer returns the cached URL signer when fresh, otherwise loads the
// key and replaces the cache entry. Readers never wait on a reload:
// concurrent cache misses each perform their own load.
func (s *CloudFrontSigner) signer(ctx context.Context, keyPairID, secretRef string) (*sign.URLSigner, error) {
	cacheKey := keyPairID + ":" + secretRef
	ttl := s.cacheTTL()
	now := s.now()

	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil && cached.cacheKey == cacheKey && now.Sub(cached.loadedAt) <= ttl {
		return cached.signer, nil
	}

	privateKey, err := s.loadPrivateKey(ctx, secretRef)
	if err != nil {
		return nil, err
	}

	// The CloudFront signed-URL scheme verifies RSA PKCS#1 v1.5
	// signatures over a SHA-1 digest; the SDK signer emits exactly that.
	signer := sign.NewURLSigner(keyPairID, privateKey)

	s.mu.Lock()
	s.cached = &cachedSigner{cacheKey: cacheKey, loadedAt: now, signer: signer}
	s.mu.Unlock()
	return signer, nil
}

func (s *CloudFrontSigner) loadPrivateKey(ctx context.Context, secretRef string) (*rsa.PrivateKey, error) {
	payload, err := s.secrets.SecretJSON(ctx, secretRef)
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}

	var keyPEM string
	for _, field := range privateKeyFields {
		if value, ok := payload[field].(string); ok && strings.TrimSpace(value) != "" {
			keyPEM = value
			break
		}
	}
	if keyPEM == "" {
		return nil, fmt.Errorf("signing key secret must include private_key_pem")
	}

	block, _ := pem.Decode([]byte(keyPEM))
	if block == nil {
		return nil, fmt.Errorf("signing key secret does not contain a PEM block")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing private key: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signing private key must be an RSA key")
	}
	return rsaKey, nil
}

func (s *CloudFrontSigner) cacheTTL() time.Duration {
	ttl := s.cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if ttl < minCacheTTL {
		ttl = minCacheTTL
	}
	if ttl > maxCacheTTL {
		ttl = maxCacheTTL
	}
	return ttl
}
