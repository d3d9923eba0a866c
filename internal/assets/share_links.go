package assets

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/evolvesprouts/backend/internal/models"
	"github.com/evolvesprouts/backend/internal/sharelink"
)

// CreateShareLink issues a stable share link for an asset. When the
// caller supplies no domains the configured default allowlist applies;
// that default being unconfigured is a server-side configuration error,
// never a silently open link. One link per asset: a second create is a
// conflict.
func (s *Service) CreateShareLink(ctx context.Context, assetID string, rawDomains []string, createdBy string) (models.ShareLink, error) {
	if _, err := s.Assets.GetByID(ctx, assetID); err != nil {
		return models.ShareLink{}, err
	}

	domains, err := s.resolveDomains(rawDomains)
	if err != nil {
		return models.ShareLink{}, err
	}

	token, err := sharelink.GenerateToken()
	if err != nil {
		return models.ShareLink{}, err
	}

	now := s.now()
	link := models.ShareLink{
		ID:             uuid.NewString(),
		AssetID:        assetID,
		Token:          token,
		AllowedDomains: domains,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.ShareLinks.Create(ctx, link); err != nil {
		return models.ShareLink{}, err
	}
	return link, nil
}

// GetShareLink returns the share link attached to an asset.
func (s *Service) GetShareLink(ctx context.Context, assetID string) (models.ShareLink, error) {
	return s.ShareLinks.GetByAssetID(ctx, assetID)
}

// UpdateShareLinkDomains replaces the allowlist on an asset's share link.
// The token itself never changes; rotation means delete and recreate.
func (s *Service) UpdateShareLinkDomains(ctx context.Context, assetID string, rawDomains []string) (models.ShareLink, error) {
	link, err := s.ShareLinks.GetByAssetID(ctx, assetID)
	if err != nil {
		return models.ShareLink{}, err
	}

	domains, err := sharelink.NormalizeAllowedDomains(rawDomains)
	if err != nil {
		return models.ShareLink{}, err
	}

	if err := s.ShareLinks.UpdateDomains(ctx, link.ID, domains); err != nil {
		return models.ShareLink{}, err
	}
	link.AllowedDomains = domains
	link.UpdatedAt = s.now()
	return link, nil
}

// DeleteShareLink removes the share link attached to an asset.
func (s *Service) DeleteShareLink(ctx context.Context, assetID string) error {
	link, err := s.ShareLinks.GetByAssetID(ctx, assetID)
	if err != nil {
		return err
	}
	return s.ShareLinks.Delete(ctx, link.ID)
}

func (s *Service) resolveDomains(rawDomains []string) ([]string, error) {
	if len(rawDomains) == 0 {
		domains, err := sharelink.ResolveDefaultAllowedDomains(s.DefaultShareDomains)
		if err != nil {
			return nil, fmt.Errorf("resolve default share domains: %w", err)
		}
		return domains, nil
	}
	return sharelink.NormalizeAllowedDomains(rawDomains)
}
