package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/evolvesprouts/backend/internal/validation"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 100
)

// parseLimit reads the page-size query parameter with bounds checking.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultPageLimit, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.NewError("limit", "limit must be an integer")
	}
	if parsed <= 0 || parsed > maxPageLimit {
		return 0, validation.NewError("limit", "limit must be between 1 and %d", maxPageLimit)
	}
	return parsed, nil
}

// parseCursor reads the opaque pagination cursor, which is the last-seen
// asset identifier of the previous page.
func parseCursor(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("cursor")
	if raw == "" {
		return "", nil
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", validation.NewError("cursor", "cursor must be a valid identifier")
	}
	return raw, nil
}

// parseID validates a path identifier.
func parseID(raw, field string) (string, error) {
	if _, err := uuid.Parse(raw); err != nil {
		return "", validation.NewError(field, "%s must be a valid identifier", field)
	}
	return raw, nil
}

// pagedResponse trims an over-fetched page and computes the next cursor.
type pagedResponse[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor"`
}

func paginate[S any, T any](items []S, limit int, serialize func(S) T, cursorOf func(S) string) pagedResponse[T] {
	page := items
	var next *string
	if len(items) > limit {
		page = items[:limit]
		cursor := cursorOf(page[len(page)-1])
		next = &cursor
	}

	payload := make([]T, 0, len(page))
	for _, item := range page {
		payload = append(payload, serialize(item))
	}
	return pagedResponse[T]{Items: payload, NextCursor: next}
}
