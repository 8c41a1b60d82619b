package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"order-fraud-review/internal/application/casecreation"
	"order-fraud-review/internal/domain/order"
)

// CaseHandler lets the host platform request a vendor case for a completed order
type CaseHandler struct {
	enqueuer casecreation.Enqueuer
	logger   *zap.Logger
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(enqueuer casecreation.Enqueuer, logger *zap.Logger) *CaseHandler {
	return &CaseHandler{enqueuer: enqueuer, logger: logger}
}

// CreateCase handles POST /api/v1/fraud-review/orders/{number}/case
func (h *CaseHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")

	if err := h.enqueuer.Enqueue(r.Context(), number); err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrInvalidOrderNumber):
			writeError(w, http.StatusBadRequest, "invalid order number")
		default:
			h.logger.Error("failed to enqueue case creation", zap.String("order_number", number), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to enqueue case creation")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"order_number": number,
		"status":       "queued",
	})
}
