package handler

import (
	"encoding/json"
	"net/http"

	"estateguard/internal/aml"
	"estateguard/internal/middleware"
	"estateguard/pkg/errors"
	"estateguard/pkg/logger"
	"estateguard/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type AMLHandler struct {
	service   *aml.Service
	validator *validator.Validator
	logger    logger.Logger
}

func NewAMLHandler(service *aml.Service, val *validator.Validator, log logger.Logger) *AMLHandler {
	return &AMLHandler{
		service:   service,
		validator: val,
		logger:    log,
	}
}

type evaluateRequest struct {
	UserID        string `json:"user_id" validate:"required,uuid"`
	TransactionID string `json:"transaction_id" validate:"required,uuid"`
	Amount        string `json:"amount" validate:"required"`
	Frequency     int    `json:"frequency" validate:"min=0"`
}

// Evaluate handles POST /aml/evaluate
func (h *AMLHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, _ := uuid.Parse(req.UserID)
	transactionID, _ := uuid.Parse(req.TransactionID)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	record, err := h.service.Evaluate(r.Context(), &aml.EvaluateRequest{
		ActorID:       actorID,
		UserID:        userID,
		TransactionID: transactionID,
		Amount:        amount,
		Frequency:     req.Frequency,
	})
	if err != nil {
		switch {
		case errors.Is(err, errors.ErrUserNotFound):
			h.respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, errors.ErrInvalidInput):
			h.respondError(w, http.StatusBadRequest, "Amount and frequency must not be negative")
		default:
			h.logger.Error("failed to evaluate transaction", map[string]interface{}{"error": err.Error()})
			h.respondError(w, failureStatus(err), "Failed to evaluate transaction")
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, record)
}

// ListRecords handles GET /aml/users/{id}/records?suspicious=&limit=&offset=
func (h *AMLHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	limit, offset := paginationParams(r, 20)
	suspiciousOnly := r.URL.Query().Get("suspicious") == "true"

	records, err := h.service.ListRecords(r.Context(), userID, suspiciousOnly, limit, offset)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to list aml records", map[string]interface{}{"error": err.Error()})
		h.respondError(w, failureStatus(err), "Failed to list records")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"records": records,
		"limit":   limit,
		"offset":  offset,
	})
}

// Helpers

func (h *AMLHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("json encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *AMLHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
