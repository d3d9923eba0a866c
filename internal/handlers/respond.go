package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/evolvesprouts/backend/internal/assets"
	"github.com/evolvesprouts/backend/internal/logging"
	"github.com/evolvesprouts/backend/internal/repositories"
	"github.com/evolvesprouts/backend/internal/validation"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Upstream failures stay server errors; they are never converted into a
// denial the caller could mistake for an authorization decision.
func respondServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if verr, ok := validation.AsError(err); ok {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{
			"error": verr.Message,
			"field": verr.Field,
		})
		return
	}

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "Not found"})
	case errors.Is(err, repositories.ErrConflict):
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "Conflict"})
	case errors.Is(err, assets.ErrForbidden):
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "Forbidden"})
	case errors.Is(err, assets.ErrUnauthenticated):
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	default:
		logging.FromContext(ctx).Error("request failed", "error", err)
		payload := map[string]string{"error": "Internal server error"}
		if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
			payload["request_id"] = requestID
		}
		respondJSON(ctx, w, http.StatusInternalServerError, payload)
	}
}

// setNoCacheHeaders marks a response as carrying bearer credentials
// (signed URLs) that must never be cached.
func setNoCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}
