// Package assets orchestrates asset authoring, access decisions, and
// signed-link delivery.
package assets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evolvesprouts/backend/internal/access"
	"github.com/evolvesprouts/backend/internal/identity"
	"github.com/evolvesprouts/backend/internal/logging"
	"github.com/evolvesprouts/backend/internal/models"
	"github.com/evolvesprouts/backend/internal/repositories"
	"github.com/evolvesprouts/backend/internal/sharelink"
	"github.com/evolvesprouts/backend/internal/validation"
)

var (
	// ErrForbidden means the caller is known but not allowed.
	ErrForbidden = errors.New("access denied")
	// ErrUnauthenticated means the caller presented no usable credential.
	ErrUnauthenticated = errors.New("authentication required")
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 5000
	maxFileNameLength    = 255
	maxContentTypeLength = 127

	defaultDownloadExpiryDays = 9999
	minDownloadExpiryDays     = 1
	maxDownloadExpiryDays     = 36500
)

// AssetStore captures the asset and grant persistence the service needs.
type AssetStore interface {
	Create(ctx context.Context, asset models.Asset) error
	GetByID(ctx context.Context, id string) (models.Asset, error)
	Update(ctx context.Context, asset models.Asset) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params repositories.ListAssetsParams) ([]models.Asset, error)
	ListPublic(ctx context.Context, limit int, cursor string) ([]models.Asset, error)
	ListAccessible(ctx context.Context, params repositories.AccessibleAssetsParams) ([]models.Asset, error)
	HasGrantFor(ctx context.Context, assetID, subject string, organizations []string) (bool, error)
	ListGrants(ctx context.Context, assetID string) ([]models.AccessGrant, error)
	GetGrant(ctx context.Context, assetID, grantID string) (models.AccessGrant, error)
	CreateGrant(ctx context.Context, grant models.AccessGrant) error
	DeleteGrant(ctx context.Context, assetID, grantID string) error
	FindMatchingGrant(ctx context.Context, assetID string, grantType models.GrantType, granteeID string) (models.AccessGrant, error)
}

// ShareLinkStore captures share-link persistence.
type ShareLinkStore interface {
	Create(ctx context.Context, link models.ShareLink) error
	GetByToken(ctx context.Context, token string) (models.ShareLink, error)
	GetByAssetID(ctx context.Context, assetID string) (models.ShareLink, error)
	UpdateDomains(ctx context.Context, id string, domains []string) error
	Delete(ctx context.Context, id string) error
}

// ObjectStore mints presigned uploads and deletes stored objects.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (models.UploadTicket, error)
	DeleteObject(ctx context.Context, key string) error
}

// DownloadSigner signs long-lived download URLs.
type DownloadSigner interface {
	SignDownloadURL(ctx context.Context, s3Key string, expiresAt time.Time) (string, error)
}

// Service composes identity, grants, storage, and signing into the asset
// boundary operations.
type Service struct {
	Assets     AssetStore
	ShareLinks ShareLinkStore
	Store      ObjectStore
	Signer     DownloadSigner

	// DefaultShareDomains is the raw configured allowlist applied to new
	// share links when the caller supplies none.
	DefaultShareDomains string
	// DownloadExpiryDays controls signed download URL lifetime.
	DownloadExpiryDays int

	NowFunc func() time.Time
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

// CreateAssetParams is the validated-on-entry authoring payload.
type CreateAssetParams struct {
	Title       string
	Description string
	FileName    string
	AssetType   string
	ContentType string
	Visibility  string
}

// CreateAsset validates the payload, mints the storage key, persists the
// metadata row, and returns a fresh upload ticket alongside the asset.
func (s *Service) CreateAsset(ctx context.Context, params CreateAssetParams, createdBy string) (models.Asset, models.UploadTicket, error) {
	defer logging.Span(ctx, "assets.create")()

	asset, err := s.assetFromParams(params)
	if err != nil {
		return models.Asset{}, models.UploadTicket{}, err
	}

	now := s.now()
	asset.ID = uuid.NewString()
	asset.S3Key = buildS3Key(asset.ID, asset.FileName)
	asset.CreatedBy = createdBy
	asset.CreatedAt = now
	asset.UpdatedAt = now

	if err := s.Assets.Create(ctx, asset); err != nil {
		return models.Asset{}, models.UploadTicket{}, fmt.Errorf("create asset: %w", err)
	}

	upload, err := s.Store.PresignUpload(ctx, asset.S3Key, asset.ContentType)
	if err != nil {
		return models.Asset{}, models.UploadTicket{}, fmt.Errorf("presign upload for asset %s: %w", asset.ID, err)
	}

	return asset, upload, nil
}

// UpdateAsset replaces the mutable metadata of an asset. The storage key
// is immutable; changing the content means deleting and recreating.
func (s *Service) UpdateAsset(ctx context.Context, assetID string, params CreateAssetParams) (models.Asset, error) {
	updated, err := s.assetFromParams(params)
	if err != nil {
		return models.Asset{}, err
	}

	existing, err := s.Assets.GetByID(ctx, assetID)
	if err != nil {
		return models.Asset{}, err
	}

	existing.Title = updated.Title
	existing.Description = updated.Description
	existing.AssetType = updated.AssetType
	existing.FileName = updated.FileName
	existing.ContentType = updated.ContentType
	existing.Visibility = updated.Visibility
	existing.UpdatedAt = s.now()

	if err := s.Assets.Update(ctx, existing); err != nil {
		return models.Asset{}, err
	}
	return existing, nil
}

// GetAsset fetches an asset by identifier.
func (s *Service) GetAsset(ctx context.Context, assetID string) (models.Asset, error) {
	return s.Assets.GetByID(ctx, assetID)
}

// DeleteAsset removes the backing object and then the metadata row. The
// object delete happens first; a crash in between can orphan the row's
// reference, which is logged rather than compensated.
func (s *Service) DeleteAsset(ctx context.Context, assetID string) error {
	defer logging.Span(ctx, "assets.delete")()

	asset, err := s.Assets.GetByID(ctx, assetID)
	if err != nil {
		return err
	}

	if err := s.Store.DeleteObject(ctx, asset.S3Key); err != nil {
		return fmt.Errorf("delete stored object for asset %s: %w", assetID, err)
	}

	if err := s.Assets.Delete(ctx, assetID); err != nil {
		logging.FromContext(ctx).Error("asset row delete failed after object delete",
			"assetId", assetID, "s3Key", asset.S3Key, "error", err)
		return err
	}
	return nil
}

// ListAssets is the unfiltered admin listing.
func (s *Service) ListAssets(ctx context.Context, params repositories.ListAssetsParams) ([]models.Asset, error) {
	return s.Assets.List(ctx, params)
}

// ListPublicAssets lists public assets for anonymous callers.
func (s *Service) ListPublicAssets(ctx context.Context, limit int, cursor string) ([]models.Asset, error) {
	return s.Assets.ListPublic(ctx, limit, cursor)
}

// ListAccessibleAssets lists what the caller may download. Privileged
// callers see everything; everyone else gets the grant-filtered listing
// as a single query.
func (s *Service) ListAccessibleAssets(ctx context.Context, id identity.Identity, limit int, cursor string) ([]models.Asset, error) {
	if id.IsAdminOrManager() {
		return s.Assets.List(ctx, repositories.ListAssetsParams{Limit: limit, Cursor: cursor})
	}
	return s.Assets.ListAccessible(ctx, repositories.AccessibleAssetsParams{
		Subject:       id.Subject,
		Organizations: id.Organizations,
		Limit:         limit,
		Cursor:        cursor,
	})
}

// CanAccess applies the grant-matching decision table, consulting the
// grant store only when identity-level rules are not decisive.
func (s *Service) CanAccess(ctx context.Context, asset models.Asset, id identity.Identity) (bool, error) {
	switch access.Evaluate(asset, id) {
	case access.Allow:
		return true, nil
	case access.Deny:
		return false, nil
	}
	return s.Assets.HasGrantFor(ctx, asset.ID, id.Subject, id.Organizations)
}

// DownloadAsset authorizes the caller against the asset and mints a
// download ticket. A denial is ErrForbidden, never a silent not-found.
func (s *Service) DownloadAsset(ctx context.Context, assetID string, id identity.Identity) (models.DownloadTicket, error) {
	defer logging.Span(ctx, "assets.download")()

	asset, err := s.Assets.GetByID(ctx, assetID)
	if err != nil {
		return models.DownloadTicket{}, err
	}

	allowed, err := s.CanAccess(ctx, asset, id)
	if err != nil {
		return models.DownloadTicket{}, err
	}
	if !allowed {
		return models.DownloadTicket{}, ErrForbidden
	}

	return s.downloadTicket(ctx, asset.S3Key)
}

// DownloadPublicAsset mints a download ticket for a public asset.
// Restricted assets are reported as not-found on this path so their
// existence is not leaked.
func (s *Service) DownloadPublicAsset(ctx context.Context, assetID string) (models.DownloadTicket, error) {
	asset, err := s.Assets.GetByID(ctx, assetID)
	if err != nil {
		return models.DownloadTicket{}, err
	}
	if asset.Visibility != models.VisibilityPublic {
		return models.DownloadTicket{}, repositories.ErrNotFound
	}
	return s.downloadTicket(ctx, asset.S3Key)
}

// ResolveShareToken authorizes a stable share-link request and mints the
// redirect target. Outcomes, in order: malformed or unknown tokens and
// missing assets are not-found; a source domain outside the allowlist is
// forbidden; a restricted asset without an authenticated caller is
// unauthenticated.
func (s *Service) ResolveShareToken(ctx context.Context, token, sourceDomain string, id identity.Identity) (models.DownloadTicket, error) {
	defer logging.Span(ctx, "assets.resolve_share_token")()

	if !sharelink.IsValidToken(token) {
		return models.DownloadTicket{}, repositories.ErrNotFound
	}

	link, err := s.ShareLinks.GetByToken(ctx, token)
	if err != nil {
		return models.DownloadTicket{}, err
	}

	if !sharelink.DomainAllowed(sourceDomain, link.AllowedDomains) {
		return models.DownloadTicket{}, ErrForbidden
	}

	asset, err := s.Assets.GetByID(ctx, link.AssetID)
	if err != nil {
		return models.DownloadTicket{}, err
	}

	if asset.Visibility == models.VisibilityRestricted && !id.IsAuthenticated() {
		return models.DownloadTicket{}, ErrUnauthenticated
	}

	return s.downloadTicket(ctx, asset.S3Key)
}

func (s *Service) downloadTicket(ctx context.Context, s3Key string) (models.DownloadTicket, error) {
	expiresAt := s.now().Add(time.Duration(s.downloadExpiryDays()) * 24 * time.Hour)
	url, err := s.Signer.SignDownloadURL(ctx, s3Key, expiresAt)
	if err != nil {
		return models.DownloadTicket{}, err
	}
	return models.DownloadTicket{URL: url, ExpiresAt: expiresAt}, nil
}

func (s *Service) downloadExpiryDays() int {
	days := s.DownloadExpiryDays
	if days == 0 {
		days = defaultDownloadExpiryDays
	}
	if days < minDownloadExpiryDays {
		days = minDownloadExpiryDays
	}
	if days > maxDownloadExpiryDays {
		days = maxDownloadExpiryDays
	}
	return days
}

func (s *Service) assetFromParams(params CreateAssetParams) (models.Asset, error) {
	title, err := validation.RequiredString(params.Title, "title", maxTitleLength)
	if err != nil {
		return models.Asset{}, err
	}
	description, err := validation.OptionalString(params.Description, "description", maxDescriptionLength)
	if err != nil {
		return models.Asset{}, err
	}
	fileName, err := validation.RequiredString(params.FileName, "file_name", maxFileNameLength)
	if err != nil {
		return models.Asset{}, err
	}
	contentType, err := validation.OptionalString(params.ContentType, "content_type", maxContentTypeLength)
	if err != nil {
		return models.Asset{}, err
	}

	assetTypeRaw := params.AssetType
	if assetTypeRaw == "" {
		assetTypeRaw = string(models.AssetTypeDocument)
	}
	assetType, err := models.ParseAssetType(assetTypeRaw)
	if err != nil {
		return models.Asset{}, validation.NewError("asset_type", "%s", err.Error())
	}

	visibilityRaw := params.Visibility
	if visibilityRaw == "" {
		visibilityRaw = string(models.VisibilityRestricted)
	}
	visibility, err := models.ParseAssetVisibility(visibilityRaw)
	if err != nil {
		return models.Asset{}, validation.NewError("visibility", "%s", err.Error())
	}

	return models.Asset{
		Title:       title,
		Description: description,
		AssetType:   assetType,
		FileName:    fileName,
		ContentType: contentType,
		Visibility:  visibility,
	}, nil
}
