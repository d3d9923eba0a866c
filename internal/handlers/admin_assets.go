package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/evolvesprouts/backend/internal/assets"
	"github.com/evolvesprouts/backend/internal/identity"
	"github.com/evolvesprouts/backend/internal/logging"
	"github.com/evolvesprouts/backend/internal/models"
	"github.com/evolvesprouts/backend/internal/repositories"
)

// AdminAssetHandler implements the asset administration endpoints:
// CRUD, access grants, and share-link management.
type AdminAssetHandler struct {
	Assets       AdminAssetService
	ShareBaseURL string
}

type assetRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileName    string `json:"file_name"`
	AssetType   string `json:"asset_type"`
	ContentType string `json:"content_type"`
	Visibility  string `json:"visibility"`
}

func (req assetRequest) params() assets.CreateAssetParams {
	return assets.CreateAssetParams{
		Title:       req.Title,
		Description: req.Description,
		FileName:    req.FileName,
		AssetType:   req.AssetType,
		ContentType: req.ContentType,
		Visibility:  req.Visibility,
	}
}

// List handles GET /api/v1/admin/assets.
func (h AdminAssetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	cursor, err := parseCursor(r)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	params := repositories.ListAssetsParams{
		Limit:  limit + 1,
		Cursor: cursor,
		Query:  r.URL.Query().Get("query"),
	}
	if raw := r.URL.Query().Get("visibility"); raw != "" {
		visibility, err := models.ParseAssetVisibility(raw)
		if err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": "visibility"})
			return
		}
		params.Visibility = visibility
	}
	if raw := r.URL.Query().Get("asset_type"); raw != "" {
		assetType, err := models.ParseAssetType(raw)
		if err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": "asset_type"})
			return
		}
		params.AssetType = assetType
	}

	items, err := h.Assets.ListAssets(ctx, params)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, paginate(items, limit, serializeAsset,
		func(a models.Asset) string { return a.ID }))
}

// Create handles POST /api/v1/admin/assets. The response carries the new
// metadata plus a presigned upload ticket, so it must not be cached.
func (h AdminAssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("invalid asset payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	asset, upload, err := h.Assets.CreateAsset(ctx, req.params(), caller.Subject)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	setNoCacheHeaders(w)
	respondJSON(ctx, w, http.StatusCreated, map[string]any{
		"asset":  serializeAsset(asset),
		"upload": upload,
	})
}

// Get handles GET /api/v1/admin/assets/{id}.
func (h AdminAssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	asset, err := h.Assets.GetAsset(ctx, assetID)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"asset": serializeAsset(asset)})
}

// Update handles PUT /api/v1/admin/assets/{id}. The full metadata payload
// is required, as on create; partial updates are not supported.
func (h AdminAssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("invalid asset payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	asset, err := h.Assets.UpdateAsset(ctx, assetID, req.params())
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"asset": serializeAsset(asset)})
}

// Delete handles DELETE /api/v1/admin/assets/{id}.
func (h AdminAssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	if err := h.Assets.DeleteAsset(ctx, assetID); err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGrants handles GET /api/v1/admin/assets/{id}/grants.
func (h AdminAssetHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	grants, err := h.Assets.ListGrants(ctx, assetID)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	payload := make([]grantPayload, 0, len(grants))
	for _, grant := range grants {
		payload = append(payload, serializeGrant(grant))
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"items": payload})
}

// CreateGrant handles POST /api/v1/admin/assets/{id}/grants.
func (h AdminAssetHandler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	var req struct {
		GrantType string `json:"grant_type"`
		GranteeID string `json:"grantee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("invalid grant payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	grant, err := h.Assets.CreateGrant(ctx, assetID, assets.CreateGrantParams{
		GrantType: req.GrantType,
		GranteeID: req.GranteeID,
	}, caller.Subject)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, map[string]any{"grant": serializeGrant(grant)})
}

// DeleteGrant handles DELETE /api/v1/admin/assets/{id}/grants/{grantId}.
func (h AdminAssetHandler) DeleteGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	grantID, err := parseID(r.PathValue("grantId"), "grant_id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	if err := h.Assets.DeleteGrant(ctx, assetID, grantID); err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireAdmin enforces that the caller is an authenticated admin or
// manager. Missing credentials are unauthorized; a known non-privileged
// caller is forbidden.
func (h AdminAssetHandler) requireAdmin(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	ctx := r.Context()
	caller := identity.FromContext(ctx)
	if !caller.IsAuthenticated() {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return identity.Identity{}, false
	}
	if !caller.IsAdminOrManager() {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
		return identity.Identity{}, false
	}
	return caller, true
}
