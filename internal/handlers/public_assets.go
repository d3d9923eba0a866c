package handlers

import (
	"net/http"

	"github.com/evolvesprouts/backend/internal/models"
)

// PublicAssetHandler serves the unauthenticated catalog of public assets.
type PublicAssetHandler struct {
	Assets PublicAssetService
}

// List handles GET /api/v1/public/assets.
func (h PublicAssetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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

	items, err := h.Assets.ListPublicAssets(ctx, limit+1, cursor)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, paginate(items, limit, serializeAsset,
		func(a models.Asset) string { return a.ID }))
}

// Download handles GET /api/v1/public/assets/{id}/download. Restricted
// assets are reported as absent rather than forbidden so the anonymous
// surface does not reveal which identifiers exist.
func (h PublicAssetHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	ticket, err := h.Assets.DownloadPublicAsset(ctx, assetID)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	setNoCacheHeaders(w)
	respondJSON(ctx, w, http.StatusOK, ticket)
}
