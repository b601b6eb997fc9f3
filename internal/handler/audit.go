package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"estateguard/internal/audit"
	"estateguard/pkg/errors"
	"estateguard/pkg/logger"

	"github.com/google/uuid"
)

type AuditHandler struct {
	service *audit.Service
	logger  logger.Logger
}

func NewAuditHandler(service *audit.Service, log logger.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  log,
	}
}

// List handles GET /audit?actor_id=&user_id=&action=&from=&to=&limit=&offset=
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r, 50)
	params := audit.ListParams{
		Action: r.URL.Query().Get("action"),
		Limit:  limit,
		Offset: offset,
	}

	if v := r.URL.Query().Get("actor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid actor_id")
			return
		}
		params.ActorID = &id
	}
	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid user_id")
			return
		}
		params.UserID = &id
	}
	if v := r.URL.Query().Get("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid from timestamp, expected RFC3339")
			return
		}
		params.From = &ts
	}
	if v := r.URL.Query().Get("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid to timestamp, expected RFC3339")
			return
		}
		params.To = &ts
	}

	entries, total, err := h.service.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidAuditAction) {
			h.respondError(w, http.StatusBadRequest, "Unknown audit action")
			return
		}
		h.logger.Error("failed to list audit entries", map[string]interface{}{"error": err.Error()})
		h.respondError(w, failureStatus(err), "Failed to list audit entries")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// Helpers

func (h *AuditHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *AuditHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
