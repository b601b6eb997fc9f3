package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"estateguard/internal/middleware"
	"estateguard/internal/risk"
	"estateguard/pkg/errors"
	"estateguard/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type RiskHandler struct {
	service *risk.Service
	logger  logger.Logger
}

func NewRiskHandler(service *risk.Service, log logger.Logger) *RiskHandler {
	return &RiskHandler{
		service: service,
		logger:  log,
	}
}

// Recompute handles POST /risk/users/{id}/recompute
func (h *RiskHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	breakdown, err := h.service.Recompute(r.Context(), actorID, userID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to recompute risk score", map[string]interface{}{"error": err.Error()})
		h.respondError(w, failureStatus(err), "Failed to recompute risk score")
		return
	}

	h.respondJSON(w, http.StatusOK, breakdown)
}

// GetProfile handles GET /risk/users/{id}
func (h *RiskHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to get risk profile", map[string]interface{}{"error": err.Error()})
		h.respondError(w, failureStatus(err), "Failed to get risk profile")
		return
	}

	h.respondJSON(w, http.StatusOK, profile)
}

// ListProfiles handles GET /risk/profiles?min_score=&limit=&offset=
func (h *RiskHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r, 20)

	minScore := 0
	if v := r.URL.Query().Get("min_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.respondError(w, http.StatusBadRequest, "Invalid min_score")
			return
		}
		minScore = n
	}

	profiles, err := h.service.ListProfiles(r.Context(), minScore, limit, offset)
	if err != nil {
		h.logger.Error("failed to list risk profiles", map[string]interface{}{"error": err.Error()})
		h.respondError(w, failureStatus(err), "Failed to list risk profiles")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"limit":    limit,
		"offset":   offset,
	})
}

// Helpers

func (h *RiskHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *RiskHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
