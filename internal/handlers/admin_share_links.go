package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/evolvesprouts/backend/internal/logging"
	"github.com/evolvesprouts/backend/internal/models"
	"github.com/evolvesprouts/backend/internal/sharelink"
)

type shareLinkRequest struct {
	AllowedDomains []string `json:"allowed_domains"`
}

// CreateShareLink handles POST /api/v1/admin/assets/{id}/share-link.
// Each asset carries at most one link; a second create conflicts.
func (h AdminAssetHandler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
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

	var req shareLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("invalid share link payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	link, err := h.Assets.CreateShareLink(ctx, assetID, req.AllowedDomains, caller.Subject)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, h.shareLinkResponse(r, link))
}

// GetShareLink handles GET /api/v1/admin/assets/{id}/share-link.
func (h AdminAssetHandler) GetShareLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	link, err := h.Assets.GetShareLink(ctx, assetID)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, h.shareLinkResponse(r, link))
}

// UpdateShareLink handles PUT /api/v1/admin/assets/{id}/share-link and
// replaces the allow-list. The token itself never changes; revoking a
// leaked link means deleting it and creating a fresh one.
func (h AdminAssetHandler) UpdateShareLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	var req shareLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("invalid share link payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	link, err := h.Assets.UpdateShareLinkDomains(ctx, assetID, req.AllowedDomains)
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, h.shareLinkResponse(r, link))
}

// DeleteShareLink handles DELETE /api/v1/admin/assets/{id}/share-link.
func (h AdminAssetHandler) DeleteShareLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}

	assetID, err := parseID(r.PathValue("id"), "id")
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}

	if err := h.Assets.DeleteShareLink(ctx, assetID); err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h AdminAssetHandler) shareLinkResponse(r *http.Request, link models.ShareLink) map[string]any {
	shareURL, err := sharelink.BuildShareURL(h.ShareBaseURL, r, link.Token)
	if err != nil {
		logging.FromContext(r.Context()).Warn("derive share url", "error", err)
		shareURL = ""
	}
	return map[string]any{"share_link": serializeShareLink(link, shareURL)}
}
