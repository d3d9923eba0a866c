package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/evolvesprouts/backend/internal/models"
	"github.com/evolvesprouts/backend/internal/repositories"
	"github.com/evolvesprouts/backend/internal/validation"
)

const maxPrincipalIDLength = 128

// CreateGrantParams is the raw grant creation payload.
type CreateGrantParams struct {
	GrantType string
	GranteeID string
}

// ListGrants returns the grants attached to an asset, verifying the asset
// exists first so a missing asset is not reported as an empty list.
func (s *Service) ListGrants(ctx context.Context, assetID string) ([]models.AccessGrant, error) {
	if _, err := s.Assets.GetByID(ctx, assetID); err != nil {
		return nil, err
	}
	return s.Assets.ListGrants(ctx, assetID)
}

// CreateGrant validates and persists a new access grant. all_authenticated
// grants never carry a grantee; organization and user grants require one.
// A duplicate (asset, type, grantee) triple is a conflict.
func (s *Service) CreateGrant(ctx context.Context, assetID string, params CreateGrantParams, grantedBy string) (models.AccessGrant, error) {
	if params.GrantType == "" {
		return models.AccessGrant{}, validation.NewError("grant_type", "grant_type is required")
	}
	grantType, err := models.ParseGrantType(params.GrantType)
	if err != nil {
		return models.AccessGrant{}, validation.NewError("grant_type", "%s", err.Error())
	}

	granteeID, err := validation.OptionalString(params.GranteeID, "grantee_id", maxPrincipalIDLength)
	if err != nil {
		return models.AccessGrant{}, err
	}
	if grantType == models.GrantAllAuthenticated {
		granteeID = ""
	} else if granteeID == "" {
		return models.AccessGrant{}, validation.NewError("grantee_id",
			"grantee_id is required for organization and user grants")
	}

	if _, err := s.Assets.GetByID(ctx, assetID); err != nil {
		return models.AccessGrant{}, err
	}

	// The unique index is the real guard; this pre-check just turns the
	// common duplicate into a friendlier early answer.
	if _, err := s.Assets.FindMatchingGrant(ctx, assetID, grantType, granteeID); err == nil {
		return models.AccessGrant{}, repositories.ErrConflict
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.AccessGrant{}, fmt.Errorf("check existing grant: %w", err)
	}

	grant := models.AccessGrant{
		ID:        uuid.NewString(),
		AssetID:   assetID,
		GrantType: grantType,
		GranteeID: granteeID,
		GrantedBy: grantedBy,
		CreatedAt: s.now(),
	}
	if err := s.Assets.CreateGrant(ctx, grant); err != nil {
		return models.AccessGrant{}, err
	}
	return grant, nil
}

// DeleteGrant removes a grant scoped to an asset.
func (s *Service) DeleteGrant(ctx context.Context, assetID, grantID string) error {
	return s.Assets.DeleteGrant(ctx, assetID, grantID)
}
