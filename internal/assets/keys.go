package assets

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var fileNameSafePattern = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// buildS3Key mints the canonical object key for a new asset. The random
// segment keeps retried uploads with identical filenames from colliding.
func buildS3Key(assetID, fileName string) string {
	return fmt.Sprintf("assets/%s/%s-%s", assetID, uuid.NewString(), sanitizeFileName(fileName))
}

// sanitizeFileName reduces a display filename to a safe object-key segment.
func sanitizeFileName(fileName string) string {
	normalized := strings.TrimSpace(fileName)
	if normalized == "" {
		return "asset"
	}
	cleaned := strings.Trim(fileNameSafePattern.ReplaceAllString(normalized, "-"), "-")
	if cleaned == "" {
		return "asset"
	}
	if len(cleaned) > maxFileNameLength {
		cleaned = cleaned[:maxFileNameLength]
	}
	return cleaned
}
