// Package handler wires the compliance services to HTTP.
package handler

import (
	"encoding/json"
	"net/http"

	"estateguard/internal/kyc"
	"estateguard/internal/middleware"
	"estateguard/pkg/errors"
	"estateguard/pkg/logger"
	"estateguard/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type KYCHandler struct {
	service   *kyc.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewKYCHandler(service *kyc.Service, val *validator.Validator, log logger.Logger) *KYCHandler {
	return &KYCHandler{
		service:   service,
		validator: val,
		logger:    log,
	}
}

// ListUsers handles GET /kyc/users?status=&limit=&offset=
func (h *KYCHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r, 20)
	status := r.URL.Query().Get("status")

	users, total, err := h.service.ListUsers(r.Context(), status, limit, offset)
	if err != nil {
		h.logger.Error("failed to list users", map[string]interface{}{"error": err.Error()})
		h.respondError(w, failureStatus(err), "Failed to list users")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetStatus handles GET /kyc/users/{id}/status
func (h *KYCHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	status, err := h.service.GetStatus(r.Context(), userID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to get kyc status", map[string]interface{}{"error": err.Error()})
		h.respondError(w, failureStatus(err), "Failed to get kyc status")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"status":  status,
	})
}

// History handles GET /kyc/users/{id}/history
func (h *KYCHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	decisions, err := h.service.History(r.Context(), userID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to get kyc history", map[string]interface{}{"error": err.Error()})
		h.respondError(w, failureStatus(err), "Failed to get kyc history")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   userID,
		"decisions": decisions,
	})
}

type reviewRequest struct {
	Action  string `json:"action" validate:"required"`
	Comment string `json:"comment" validate:"max=1000"`
}

// Review handles POST /kyc/users/{id}/review
func (h *KYCHandler) Review(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	decision, err := h.service.Review(r.Context(), &kyc.ReviewRequest{
		UserID:  userID,
		AdminID: adminID,
		Action:  req.Action,
		Comment: req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrInvalidDecision):
			h.respondError(w, http.StatusBadRequest, "Action must be APPROVED or REJECTED")
		case errors.Is(err, errors.ErrUserNotFound):
			h.respondError(w, http.StatusNotFound, "User not found")
		default:
			h.logger.Error("failed to record kyc decision", map[string]interface{}{"error": err.Error()})
			h.respondError(w, failureStatus(err), "Failed to record decision")
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, decision)
}

// Helpers

func (h *KYCHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *KYCHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
