package handlers

import (
	"net/http"

	"github.com/evolvesprouts/backend/internal/identity"
	"github.com/evolvesprouts/backend/internal/models"
)

// UserAssetHandler serves authenticated members: the catalog of assets
// their grants reach and signed downloads for them.
type UserAssetHandler struct {
	Assets UserAssetService
}

// List handles GET /api/v1/assets.
func (h UserAssetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := identity.FromContext(ctx)
	if !caller.IsAuthenticated() {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
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

	items, err := h.Assets.ListAccessibleAssets(ctx, caller, limit+1, cursor)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, paginate(items, limit, serializeAsset,
		func(a models.Asset) string { return a.ID }))
}

// Download handles GET /api/v1/assets/{id}/download.
func (h UserAssetHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := identity.FromContext(ctx)
	if !caller.IsAuthenticated() {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	ticket, err := h.Assets.DownloadAsset(ctx, assetID, caller)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	setNoCacheHeaders(w)
	respondJSON(ctx, w, http.StatusOK, ticket)
}
