package app

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/evolvesprouts/backend/internal/assets"
	"github.com/evolvesprouts/backend/internal/config"
	"github.com/evolvesprouts/backend/internal/db"
	"github.com/evolvesprouts/backend/internal/handlers"
	"github.com/evolvesprouts/backend/internal/middleware"
	"github.com/evolvesprouts/backend/internal/repositories"
	"github.com/evolvesprouts/backend/internal/secrets"
	"github.com/evolvesprouts/backend/internal/signing"
	"github.com/evolvesprouts/backend/internal/storage"
)

const rateLimiterTTL = 10 * time.Minute

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	store, err := storage.New(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("build object store: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.ObjectStore.Region))
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("load aws config: %w", err)
	}

	signer := signing.NewCloudFrontSigner(signing.Config{
		DistributionDomain:  cfg.CloudFront.DistributionDomain,
		KeyPairID:           cfg.CloudFront.KeyPairID,
		PrivateKeySecretRef: cfg.CloudFront.PrivateKeySecretARN,
		CacheTTL:            cfg.CloudFront.SignerCacheTTL,
	}, secrets.NewFromConfig(awsCfg))

	service := &assets.Service{
		Assets:              repositories.NewPostgresAssetRepository(pool),
		ShareLinks:          repositories.NewPostgresShareLinkRepository(pool),
		Store:               store,
		Signer:              signer,
		DefaultShareDomains: cfg.ShareLink.DefaultAllowedDomains,
		DownloadExpiryDays:  cfg.DownloadExpiryDays,
	}

	return handlers.Dependencies{
		Admin:        service,
		Public:       service,
		User:         service,
		Shares:       service,
		ShareLimiter: middleware.NewKeyedRateLimiter(cfg.ShareRateRequests, cfg.ShareRateWindow, cfg.ShareRateBurst, rateLimiterTTL),
		ShareBaseURL: cfg.ShareLink.BaseURL,
	}, nil
}
