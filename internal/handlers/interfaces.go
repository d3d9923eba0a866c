package handlers

import (
	"context"

	"github.com/evolvesprouts/backend/internal/assets"
	"github.com/evolvesprouts/backend/internal/identity"
	"github.com/evolvesprouts/backend/internal/models"
	"github.com/evolvesprouts/backend/internal/repositories"
)

// AdminAssetService captures the authoring and administration operations
// required by the admin handlers.
type AdminAssetService interface {
	CreateAsset(ctx context.Context, params assets.CreateAssetParams, createdBy string) (models.Asset, models.UploadTicket, error)
	GetAsset(ctx context.Context, assetID string) (models.Asset, error)
	UpdateAsset(ctx context.Context, assetID string, params assets.CreateAssetParams) (models.Asset, error)
	DeleteAsset(ctx context.Context, assetID string) error
	ListAssets(ctx context.Context, params repositories.ListAssetsParams) ([]models.Asset, error)

	ListGrants(ctx context.Context, assetID string) ([]models.AccessGrant, error)
	CreateGrant(ctx context.Context, assetID string, params assets.CreateGrantParams, grantedBy string) (models.AccessGrant, error)
	DeleteGrant(ctx context.Context, assetID, grantID string) error

	CreateShareLink(ctx context.Context, assetID string, rawDomains []string, createdBy string) (models.ShareLink, error)
	GetShareLink(ctx context.Context, assetID string) (models.ShareLink, error)
	UpdateShareLinkDomains(ctx context.Context, assetID string, rawDomains []string) (models.ShareLink, error)
	DeleteShareLink(ctx context.Context, assetID string) error
}

// PublicAssetService captures the anonymous asset operations.
type PublicAssetService interface {
	ListPublicAssets(ctx context.Context, limit int, cursor string) ([]models.Asset, error)
	DownloadPublicAsset(ctx context.Context, assetID string) (models.DownloadTicket, error)
}

// UserAssetService captures the authenticated member-facing operations.
type UserAssetService interface {
	ListAccessibleAssets(ctx context.Context, id identity.Identity, limit int, cursor string) ([]models.Asset, error)
	DownloadAsset(ctx context.Context, assetID string, id identity.Identity) (models.DownloadTicket, error)
}

// ShareResolver resolves stable share tokens into download redirects.
type ShareResolver interface {
	ResolveShareToken(ctx context.Context, token, sourceDomain string, id identity.Identity) (models.DownloadTicket, error)
}
