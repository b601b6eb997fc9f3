package handler

import (
	"encoding/json"
	"net/http"

	"estateguard/internal/account"
	"estateguard/internal/middleware"
	"estateguard/pkg/errors"
	"estateguard/pkg/logger"
	"estateguard/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AccountHandler struct {
	service   *account.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewAccountHandler(service *account.Service, val *validator.Validator, log logger.Logger) *AccountHandler {
	return &AccountHandler{
		service:   service,
		validator: val,
		logger:    log,
	}
}

type freezeRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// Freeze handles POST /accounts/{id}/freeze
func (h *AccountHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	h.setFrozen(w, r, true)
}

// Unfreeze handles POST /accounts/{id}/unfreeze
func (h *AccountHandler) Unfreeze(w http.ResponseWriter, r *http.Request) {
	h.setFrozen(w, r, false)
}

func (h *AccountHandler) setFrozen(w http.ResponseWriter, r *http.Request, frozen bool) {
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

	var req freezeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var user interface{}
	if frozen {
		user, err = h.service.Freeze(r.Context(), actorID, userID, req.Reason)
	} else {
		user, err = h.service.Unfreeze(r.Context(), actorID, userID, req.Reason)
	}
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to change account state", map[string]interface{}{"error": err.Error()})
		h.respondError(w, failureStatus(err), "Failed to change account state")
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// Helpers

func (h *AccountHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *AccountHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
