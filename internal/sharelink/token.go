// Package sharelink implements the bearer tokens, source-domain
// allowlists, and URL construction behind stable asset share links.
package sharelink

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
)

const tokenBytes = 24

// tokenPattern bounds tokens before any storage lookup happens, so
// malformed input is rejected without a round trip.
var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{24,128}$`)

// GenerateToken returns a fresh high-entropy URL-safe share token.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// IsValidToken reports whether a token matches the accepted share-token
// format: URL-safe alphabet, 24 to 128 characters.
func IsValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}
