package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"order-fraud-review/internal/application/review"
	"order-fraud-review/internal/domain/order"
	"order-fraud-review/internal/domain/risk"
	"order-fraud-review/internal/pkg/metrics"
	"order-fraud-review/internal/pkg/signature"
)

// CaseUpdateProcessor applies a verified case update
type CaseUpdateProcessor interface {
	Execute(ctx context.Context, event risk.CaseEvent) (*review.ProcessCaseUpdateOutput, error)
}

// Webhook outcomes recorded in metrics
const (
	outcomeOK           = "ok"
	outcomeUnauthorized = "unauthorized"
	outcomeBadRequest   = "bad_request"
	outcomeNotFound     = "not_found"
	outcomeError        = "error"
)

// WebhookHandler receives the vendor's case update callbacks
type WebhookHandler struct {
	processor       CaseUpdateProcessor
	verifier        *signature.Verifier
	signatureHeader string
	maxBodyBytes    int64
	validate        *validator.Validate
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

// WebhookConfig holds request-level settings for the webhook
type WebhookConfig struct {
	SignatureHeader string
	MaxBodyBytes    int64
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	processor CaseUpdateProcessor,
	verifier *signature.Verifier,
	cfg WebhookConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *WebhookHandler {
	if cfg.SignatureHeader == "" {
		cfg.SignatureHeader = signature.DefaultHeader
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return &WebhookHandler{
		processor:       processor,
		verifier:        verifier,
		signatureHeader: cfg.SignatureHeader,
		maxBodyBytes:    cfg.MaxBodyBytes,
		validate:        validator.New(),
		metrics:         m,
		logger:          logger,
	}
}

// CaseUpdate handles POST /api/v1/fraud-review/orders
func (h *WebhookHandler) CaseUpdate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	logger := h.logger.With(zap.String("request_id", RequestIDFromContext(r.Context())))

	// The signature covers the exact bytes, so read them before decoding
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, started, http.StatusRequestEntityTooLarge, outcomeBadRequest, "request body too large")
			return
		}
		h.reject(w, started, http.StatusBadRequest, outcomeBadRequest, "unable to read request body")
		return
	}

	if !h.verifier.Verify(body, r.Header.Get(h.signatureHeader)) {
		logger.Warn("rejected case update with invalid signature")
		h.reject(w, started, http.StatusUnauthorized, outcomeUnauthorized, "invalid signature")
		return
	}

	var event risk.CaseEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.reject(w, started, http.StatusBadRequest, outcomeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(event); err != nil {
		h.reject(w, started, http.StatusBadRequest, outcomeBadRequest, "invalid case update: "+err.Error())
		return
	}

	out, err := h.processor.Execute(r.Context(), event)
	if err != nil {
		if errors.Is(err, risk.ErrScoreOutOfRange) {
			h.reject(w, started, http.StatusBadRequest, outcomeBadRequest, err.Error())
			return
		}
		if errors.Is(err, order.ErrOrderNotFound) {
			logger.Info("case update for unknown order", zap.String("order_number", event.OrderNumber))
			h.reject(w, started, http.StatusNotFound, outcomeNotFound, "order not found")
			return
		}
		logger.Error("case update failed", zap.String("order_number", event.OrderNumber), zap.Error(err))
		h.reject(w, started, http.StatusInternalServerError, outcomeError, "failed to process case update")
		return
	}

	logger.Info("case update processed",
		zap.String("order_number", out.OrderNumber),
		zap.String("decision", string(out.Decision)),
	)
	h.metrics.ObserveWebhook(outcomeOK, started)
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) reject(w http.ResponseWriter, started time.Time, status int, outcome, message string) {
	h.metrics.ObserveWebhook(outcome, started)
	writeError(w, status, message)
}
