package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/evolvesprouts/backend/internal/db"
	"github.com/evolvesprouts/backend/internal/models"
)

// grantMatchSQL mirrors access.Matches as a SQL condition so listing and
// existence checks stay single queries. Placeholders: $2 subject, $3
// organization ids.
const grantMatchSQL = `(
            g.grant_type = 'all_authenticated'
            OR (g.grant_type = 'user' AND g.grantee_id = $2)
            OR (g.grant_type = 'organization' AND g.grantee_id = ANY($3))
        )`

const assetColumns = `id, title, description, asset_type, s3_key, file_name, content_type, visibility, created_by, created_at, updated_at`

// PostgresAssetRepository provides PostgreSQL-backed persistence for
// assets and their access grants.
type PostgresAssetRepository struct {
	pool db.Pool
}

// NewPostgresAssetRepository constructs an asset repository backed by PostgreSQL.
func NewPostgresAssetRepository(pool db.Pool) *PostgresAssetRepository {
	return &PostgresAssetRepository{pool: pool}
}

// Create persists a new asset record. A reused storage key or identifier
// surfaces as ErrConflict.
func (r *PostgresAssetRepository) Create(ctx context.Context, asset models.Asset) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO assets (id, title, description, asset_type, s3_key, file_name, content_type, visibility, created_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, asset.ID, asset.Title, nullableText(asset.Description), asset.AssetType, asset.S3Key,
		asset.FileName, nullableText(asset.ContentType), asset.Visibility, asset.CreatedBy,
		asset.CreatedAt, asset.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert asset: %w", err)
	}

	return nil
}

// GetByID fetches an asset by identifier.
func (r *PostgresAssetRepository) GetByID(ctx context.Context, id string) (models.Asset, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Asset{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+assetColumns+`
        FROM assets
        WHERE id = $1
    `, id)

	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Asset{}, ErrNotFound
		}
		return models.Asset{}, fmt.Errorf("select asset: %w", err)
	}
	return asset, nil
}

// Update replaces the mutable metadata of an existing asset.
func (r *PostgresAssetRepository) Update(ctx context.Context, asset models.Asset) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE assets
        SET title = $2, description = $3, asset_type = $4, file_name = $5,
            content_type = $6, visibility = $7, updated_at = $8
        WHERE id = $1
    `, asset.ID, asset.Title, nullableText(asset.Description), asset.AssetType,
		asset.FileName, nullableText(asset.ContentType), asset.Visibility, asset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the asset row; grants and share links cascade.
func (r *PostgresAssetRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAssetsParams filters the admin asset listing.
type ListAssetsParams struct {
	Limit      int
	Cursor     string
	Query      string
	Visibility models.AssetVisibility
	AssetType  models.AssetType
}

// List returns assets ordered by identifier with forward-only cursor
// pagination and optional filtering.
func (r *PostgresAssetRepository) List(ctx context.Context, params ListAssetsParams) ([]models.Asset, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	clauses := []string{"TRUE"}
	args := []any{}
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Cursor != "" {
		clauses = append(clauses, "id > "+arg(params.Cursor))
	}
	if params.Visibility != "" {
		clauses = append(clauses, "visibility = "+arg(params.Visibility))
	}
	if params.AssetType != "" {
		clauses = append(clauses, "asset_type = "+arg(params.AssetType))
	}
	if query := strings.TrimSpace(params.Query); query != "" {
		pattern := arg("%" + escapeLikePattern(query) + "%")
		clauses = append(clauses,
			fmt.Sprintf(`(title ILIKE %s ESCAPE '\' OR file_name ILIKE %s ESCAPE '\')`, pattern, pattern))
	}

	sqlText := `
        SELECT ` + assetColumns + `
        FROM assets
        WHERE ` + strings.Join(clauses, " AND ") + `
        ORDER BY id
        LIMIT ` + arg(params.Limit)

	rows, err := conn.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

// ListPublic returns public assets only, cursor-paginated.
func (r *PostgresAssetRepository) ListPublic(ctx context.Context, limit int, cursor string) ([]models.Asset, error) {
	return r.List(ctx, ListAssetsParams{
		Limit:      limit,
		Cursor:     cursor,
		Visibility: models.VisibilityPublic,
	})
}

// AccessibleAssetsParams identifies the caller for accessibility listing.
type AccessibleAssetsParams struct {
	Subject       string
	Organizations []string
	Limit         int
	Cursor        string
}

// ListAccessible returns the assets a non-privileged authenticated caller
// may download: public assets plus restricted assets with a matching
// grant, in one EXISTS-filtered query. Admin and manager callers should
// use List instead.
func (r *PostgresAssetRepository) ListAccessible(ctx context.Context, params AccessibleAssetsParams) ([]models.Asset, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	organizations := params.Organizations
	if organizations == nil {
		organizations = []string{}
	}

	args := []any{params.Limit, params.Subject, organizations}
	cursorClause := "TRUE"
	if params.Cursor != "" {
		args = append(args, params.Cursor)
		cursorClause = fmt.Sprintf("a.id > $%d", len(args))
	}

	rows, err := conn.Query(ctx, `
        SELECT a.id, a.title, a.description, a.asset_type, a.s3_key, a.file_name, a.content_type, a.visibility, a.created_by, a.created_at, a.updated_at
        FROM assets a
        WHERE (
            a.visibility = 'public'
            OR (a.visibility = 'restricted' AND EXISTS (
                SELECT 1 FROM asset_access_grants g
                WHERE g.asset_id = a.id AND `+grantMatchSQL+`
            ))
        ) AND `+cursorClause+`
        ORDER BY a.id
        LIMIT $1
    `, args...)
	if err != nil {
		return nil, fmt.Errorf("query accessible assets: %w", err)
	}
	defer rows.Close()

	return collectAssets(rows)
}

// HasGrantFor reports whether any grant on the asset matches the subject
// or one of its organizations. Used by the single-asset access check.
func (r *PostgresAssetRepository) HasGrantFor(ctx context.Context, assetID, subject string, organizations []string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if organizations == nil {
		organizations = []string{}
	}

	var exists bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM asset_access_grants g
            WHERE g.asset_id = $1 AND `+grantMatchSQL+`
        )
    `, assetID, subject, organizations).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query grant existence: %w", err)
	}
	return exists, nil
}

// ListGrants returns all grants for an asset, newest first.
func (r *PostgresAssetRepository) ListGrants(ctx context.Context, assetID string) ([]models.AccessGrant, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, asset_id, grant_type, grantee_id, granted_by, created_at
        FROM asset_access_grants
        WHERE asset_id = $1
        ORDER BY created_at DESC, id DESC
    `, assetID)
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer rows.Close()

	var grants []models.AccessGrant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}
	return grants, nil
}

// GetGrant fetches a grant by identifier scoped to an asset.
func (r *PostgresAssetRepository) GetGrant(ctx context.Context, assetID, grantID string) (models.AccessGrant, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.AccessGrant{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, asset_id, grant_type, grantee_id, granted_by, created_at
        FROM asset_access_grants
        WHERE asset_id = $1 AND id = $2
    `, assetID, grantID)

	grant, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AccessGrant{}, ErrNotFound
		}
		return models.AccessGrant{}, fmt.Errorf("select grant: %w", err)
	}
	return grant, nil
}

// CreateGrant persists a new access grant. A duplicate
// (asset, grant_type, grantee) triple surfaces as ErrConflict and a
// missing asset as ErrNotFound.
func (r *PostgresAssetRepository) CreateGrant(ctx context.Context, grant models.AccessGrant) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO asset_access_grants (id, asset_id, grant_type, grantee_id, granted_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, grant.ID, grant.AssetID, grant.GrantType, nullableText(grant.GranteeID), grant.GrantedBy, grant.CreatedAt)
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
		return fmt.Errorf("insert grant: %w", err)
	}

	return nil
}

// DeleteGrant removes a grant scoped to an asset.
func (r *PostgresAssetRepository) DeleteGrant(ctx context.Context, assetID, grantID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM asset_access_grants
        WHERE asset_id = $1 AND id = $2
    `, assetID, grantID)
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindMatchingGrant looks up a grant by its unique triple, treating an
// empty grantee as the stored NULL.
func (r *PostgresAssetRepository) FindMatchingGrant(ctx context.Context, assetID string, grantType models.GrantType, granteeID string) (models.AccessGrant, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.AccessGrant{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, asset_id, grant_type, grantee_id, granted_by, created_at
        FROM asset_access_grants
        WHERE asset_id = $1 AND grant_type = $2 AND COALESCE(grantee_id, '') = $3
    `, assetID, grantType, granteeID)

	grant, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AccessGrant{}, ErrNotFound
		}
		return models.AccessGrant{}, fmt.Errorf("select matching grant: %w", err)
	}
	return grant, nil
}

func collectAssets(rows pgx.Rows) ([]models.Asset, error) {
	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

func scanAsset(row pgx.Row) (models.Asset, error) {
	var (
		asset       models.Asset
		description sql.NullString
		contentType sql.NullString
	)
	if err := row.Scan(&asset.ID, &asset.Title, &description, &asset.AssetType, &asset.S3Key,
		&asset.FileName, &contentType, &asset.Visibility, &asset.CreatedBy,
		&asset.CreatedAt, &asset.UpdatedAt); err != nil {
		return models.Asset{}, err
	}
	asset.Description = description.String
	asset.ContentType = contentType.String
	return asset, nil
}

func scanGrant(row pgx.Row) (models.AccessGrant, error) {
	var (
		grant   models.AccessGrant
		grantee sql.NullString
	)
	if err := row.Scan(&grant.ID, &grant.AssetID, &grant.GrantType, &grantee,
		&grant.GrantedBy, &grant.CreatedAt); err != nil {
		return models.AccessGrant{}, err
	}
	grant.GranteeID = grantee.String
	return grant, nil
}

func nullableText(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func escapeLikePattern(pattern string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(pattern)
}
