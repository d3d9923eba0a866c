package handlers

import (
	"time"

	"github.com/evolvesprouts/backend/internal/models"
)

type assetPayload struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AssetType   string    `json:"asset_type"`
	S3Key       string    `json:"s3_key"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type,omitempty"`
	Visibility  string    `json:"visibility"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func serializeAsset(asset models.Asset) assetPayload {
	return assetPayload{
		ID:          asset.ID,
		Title:       asset.Title,
		Description: asset.Description,
		AssetType:   string(asset.AssetType),
		S3Key:       asset.S3Key,
		FileName:    asset.FileName,
		ContentType: asset.ContentType,
		Visibility:  string(asset.Visibility),
		CreatedBy:   asset.CreatedBy,
		CreatedAt:   asset.CreatedAt,
		UpdatedAt:   asset.UpdatedAt,
	}
}

type grantPayload struct {
	ID        string    `json:"id"`
	AssetID   string    `json:"asset_id"`
	GrantType string    `json:"grant_type"`
	GranteeID string    `json:"grantee_id,omitempty"`
	GrantedBy string    `json:"granted_by"`
	CreatedAt time.Time `json:"created_at"`
}

func serializeGrant(grant models.AccessGrant) grantPayload {
	return grantPayload{
		ID:        grant.ID,
		AssetID:   grant.AssetID,
		GrantType: string(grant.GrantType),
		GranteeID: grant.GranteeID,
		GrantedBy: grant.GrantedBy,
		CreatedAt: grant.CreatedAt,
	}
}

type shareLinkPayload struct {
	ID             string    `json:"id"`
	AssetID        string    `json:"asset_id"`
	ShareToken     string    `json:"share_token"`
	ShareURL       string    `json:"share_url,omitempty"`
	AllowedDomains []string  `json:"allowed_domains"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func serializeShareLink(link models.ShareLink, shareURL string) shareLinkPayload {
	return shareLinkPayload{
		ID:             link.ID,
		AssetID:        link.AssetID,
		ShareToken:     link.Token,
		ShareURL:       shareURL,
		AllowedDomains: link.AllowedDomains,
		CreatedBy:      link.CreatedBy,
		CreatedAt:      link.CreatedAt,
		UpdatedAt:      link.UpdatedAt,
	}
}
