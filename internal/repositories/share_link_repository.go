package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/evolvesprouts/backend/internal/db"
	"github.com/evolvesprouts/backend/internal/models"
)

const shareLinkColumns = `id, asset_id, share_token, allowed_domains, created_by, created_at, updated_at`

// PostgresShareLinkRepository provides PostgreSQL-backed persistence for
// stable asset share links.
type PostgresShareLinkRepository struct {
	pool db.Pool
}

// NewPostgresShareLinkRepository constructs a share-link repository backed by PostgreSQL.
func NewPostgresShareLinkRepository(pool db.Pool) *PostgresShareLinkRepository {
	return &PostgresShareLinkRepository{pool: pool}
}

// Create persists a new share link. A second link for the same asset or a
// colliding token surfaces as ErrConflict; a missing asset as ErrNotFound.
func (r *PostgresShareLinkRepository) Create(ctx context.Context, link models.ShareLink) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO asset_share_links (id, asset_id, share_token, allowed_domains, created_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, link.ID, link.AssetID, link.Token, link.AllowedDomains, link.CreatedBy, link.CreatedAt, link.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert share link: %w", err)
	}

	return nil
}

// GetByToken fetches a share link by its bearer token.
func (r *PostgresShareLinkRepository) GetByToken(ctx context.Context, token string) (models.ShareLink, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ShareLink{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+shareLinkColumns+`
        FROM asset_share_links
        WHERE share_token = $1
    `, token)

	link, err := scanShareLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ShareLink{}, ErrNotFound
		}
		return models.ShareLink{}, fmt.Errorf("select share link by token: %w", err)
	}
	return link, nil
}

// GetByAssetID fetches the share link attached to an asset.
func (r *PostgresShareLinkRepository) GetByAssetID(ctx context.Context, assetID string) (models.ShareLink, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ShareLink{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+shareLinkColumns+`
        FROM asset_share_links
        WHERE asset_id = $1
    `, assetID)

	link, err := scanShareLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ShareLink{}, ErrNotFound
		}
		return models.ShareLink{}, fmt.Errorf("select share link by asset: %w", err)
	}
	return link, nil
}

// UpdateDomains replaces the allowlist for an existing share link. The
// token stays immutable; rotation means deleting and recreating the link.
func (r *PostgresShareLinkRepository) UpdateDomains(ctx context.Context, id string, domains []string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE asset_share_links
        SET allowed_domains = $2, updated_at = now()
        WHERE id = $1
    `, id, domains)
	if err != nil {
		return fmt.Errorf("update share link domains: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a share link by identifier.
func (r *PostgresShareLinkRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM asset_share_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete share link: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanShareLink(row pgx.Row) (models.ShareLink, error) {
	var link models.ShareLink
	if err := row.Scan(&link.ID, &link.AssetID, &link.Token, &link.AllowedDomains,
		&link.CreatedBy, &link.CreatedAt, &link.UpdatedAt); err != nil {
		return models.ShareLink{}, err
	}
	return link, nil
}
