package models

import (
	"fmt"
	"strings"
	"time"
)

// AssetVisibility controls who may download an asset.
type AssetVisibility string

const (
	VisibilityPublic     AssetVisibility = "public"
	VisibilityRestricted AssetVisibility = "restricted"
)

// ParseAssetVisibility parses user input into a visibility value.
func ParseAssetVisibility(value string) (AssetVisibility, error) {
	switch AssetVisibility(strings.ToLower(strings.TrimSpace(value))) {
	case VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityRestricted:
		return VisibilityRestricted, nil
	}
	return "", fmt.Errorf("visibility must be 'public' or 'restricted'")
}

// AssetType categorises the downloadable content.
type AssetType string

const (
	AssetTypeGuide    AssetType = "guide"
	AssetTypeVideo    AssetType = "video"
	AssetTypePDF      AssetType = "pdf"
	AssetTypeDocument AssetType = "document"
)

// ParseAssetType parses user input into an asset type.
func ParseAssetType(value string) (AssetType, error) {
	switch AssetType(strings.ToLower(strings.TrimSpace(value))) {
	case AssetTypeGuide:
		return AssetTypeGuide, nil
	case AssetTypeVideo:
		return AssetTypeVideo, nil
	case AssetTypePDF:
		return AssetTypePDF, nil
	case AssetTypeDocument:
		return AssetTypeDocument, nil
	}
	return "", fmt.Errorf("asset_type must be one of guide, video, pdf, document")
}

// GrantType is the closed set of access grant variants for restricted assets.
type GrantType string

const (
	GrantAllAuthenticated GrantType = "all_authenticated"
	GrantOrganization     GrantType = "organization"
	GrantUser             GrantType = "user"
)

// ParseGrantType parses user input into a grant type.
func ParseGrantType(value string) (GrantType, error) {
	switch GrantType(strings.ToLower(strings.TrimSpace(value))) {
	case GrantAllAuthenticated:
		return GrantAllAuthenticated, nil
	case GrantOrganization:
		return GrantOrganization, nil
	case GrantUser:
		return GrantUser, nil
	}
	return "", fmt.Errorf("grant_type must be one of all_authenticated, organization, user")
}

// Asset holds the metadata for one downloadable object. The S3 key is
// minted at creation time and never reused; replacing content means
// deleting the asset and creating a new one.
type Asset struct {
	ID          string
	Title       string
	Description string
	AssetType   AssetType
	S3Key       string
	FileName    string
	ContentType string
	Visibility  AssetVisibility
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccessGrant is one access rule attached to a restricted asset.
// GranteeID is empty for all_authenticated grants and required for
// organization and user grants.
type AccessGrant struct {
	ID        string
	AssetID   string
	GrantType GrantType
	GranteeID string
	GrantedBy string
	CreatedAt time.Time
}

// ShareLink is a stable bearer-token alias for an asset download,
// gated by a source-domain allowlist. At most one link exists per asset.
type ShareLink struct {
	ID             string
	AssetID        string
	Token          string
	AllowedDomains []string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UploadTicket describes a freshly minted presigned upload.
type UploadTicket struct {
	URL       string            `json:"upload_url"`
	Method    string            `json:"upload_method"`
	Headers   map[string]string `json:"upload_headers"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// DownloadTicket describes a signed download URL and its expiry.
type DownloadTicket struct {
	URL       string    `json:"download_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
