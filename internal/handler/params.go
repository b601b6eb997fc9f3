package handler

import (
	"net/http"
	"strconv"

	"estateguard/pkg/errors"
)

// failureStatus maps unexpected service errors to a response status.
// Storage outages are reported as 503 so clients know to retry.
func failureStatus(err error) int {
	if errors.Is(err, errors.ErrStorageUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// paginationParams reads limit/offset query params, falling back to the
// given default limit. Offsets below zero are clamped.
func paginationParams(r *http.Request, defaultLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
