package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"order-fraud-review/internal/application/review"
	"order-fraud-review/internal/domain/order"
	"order-fraud-review/internal/domain/risk"
	"order-fraud-review/internal/infrastructure/database/memory"
	"order-fraud-review/internal/pkg/lock"
	"order-fraud-review/internal/pkg/metrics"
	"order-fraud-review/internal/pkg/signature"
)

const testSecret = "ABCDE"

type webhookFixture struct {
	orders   *memory.OrderRepository
	risks    *memory.RiskRepository
	metrics  *metrics.Metrics
	verifier *signature.Verifier
	handler  *WebhookHandler
}

func newWebhookFixture(t *testing.T, cfg WebhookConfig) *webhookFixture {
	t.Helper()
	logger := zap.NewNop()
	f := &webhookFixture{
		orders:   memory.NewOrderRepository(),
		risks:    memory.NewRiskRepository(),
		metrics:  metrics.NewNop(),
		verifier: signature.NewVerifier(testSecret),
	}
	uc := review.NewProcessCaseUpdateUseCase(
		f.orders,
		risk.NewService(f.risks, logger),
		risk.NewEngine(risk.Policy{ScoreThreshold: decimal.NewFromInt(500)}),
		review.NewExecutor(f.orders, "fraud-review", f.metrics, logger),
		lock.NewKeyedLocker(),
		f.metrics,
		logger,
		time.Second,
	)
	f.handler = NewWebhookHandler(uc, f.verifier, cfg, f.metrics, logger)
	return f
}

func (f *webhookFixture) seed(t *testing.T) *order.Order {
	t.Helper()
	o := &order.Order{
		ID:            uuid.New(),
		Number:        "R123456789",
		State:         order.StateComplete,
		PaymentState:  order.PaymentPaid,
		ShipmentState: order.ShipmentPending,
		Shipments:     []*order.Shipment{{ID: uuid.New(), Number: "H1", State: order.ShipmentPending}},
	}
	require.NoError(t, f.orders.Create(context.Background(), o))
	return o
}

func (f *webhookFixture) post(body, digest string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud-review/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if digest != "" {
		req.Header.Set(signature.DefaultHeader, digest)
	}
	rec := httptest.NewRecorder()
	f.handler.CaseUpdate(rec, req)
	return rec
}

func (f *webhookFixture) postSigned(body string) *httptest.ResponseRecorder {
	return f.post(body, f.verifier.Sign([]byte(body)))
}

func (f *webhookFixture) outcome(name string) float64 {
	return testutil.ToFloat64(f.metrics.WebhookRequests.WithLabelValues(name))
}

func TestWebhook_ApprovesHighScore(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{})
	seeded := f.seed(t)

	rec := f.postSigned(`{"orderId":"R123456789","score":900,"adjustedScore":900.5,"caseId":42}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, 1.0, f.outcome(outcomeOK))

	o, err := f.orders.FindByNumber(context.Background(), "R123456789")
	require.NoError(t, err)
	assert.True(t, o.Approved())

	stored, err := f.risks.GetByOrderID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 900, stored.Score)
	require.NotNil(t, stored.CaseID)
	assert.Equal(t, int64(42), *stored.CaseID)
}

func TestWebhook_FraudulentCancels(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{})
	f.seed(t)

	rec := f.postSigned(`{"orderId":"R123456789","adjustedScore":950,"reviewDisposition":"FRAUDULENT"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	o, err := f.orders.FindByNumber(context.Background(), "R123456789")
	require.NoError(t, err)
	assert.True(t, o.Canceled())
}

func TestWebhook_InvalidSignatureRejected(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{})
	f.seed(t)
	body := `{"orderId":"R123456789","adjustedScore":900}`

	tests := []struct {
		name   string
		digest string
	}{
		{"missing header", ""},
		{"wrong digest", "sdGXFLSPZi5hTt8ZCVR9FeNMrsfmOblEIkpV2cCVLxM="},
		{"digest of other body", f.verifier.Sign([]byte(body + " "))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.post(body, tt.digest)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	assert.Equal(t, 3.0, f.outcome(outcomeUnauthorized))
	assert.Zero(t, f.risks.Count())
	o, err := f.orders.FindByNumber(context.Background(), "R123456789")
	require.NoError(t, err)
	assert.False(t, o.Approved())
}

func TestWebhook_CustomSignatureHeader(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{SignatureHeader: "X-Custom-Signature"})
	f.seed(t)
	body := `{"orderId":"R123456789","adjustedScore":100}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud-review/orders", strings.NewReader(body))
	req.Header.Set("X-Custom-Signature", f.verifier.Sign([]byte(body)))
	rec := httptest.NewRecorder()
	f.handler.CaseUpdate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhook_BadRequests(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{})
	f.seed(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"orderId":`},
		{"missing order id", `{"adjustedScore":900}`},
		{"wrong type", `{"orderId":"R123456789","adjustedScore":"high"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.postSigned(tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
	assert.Zero(t, f.risks.Count())
}

func TestWebhook_ScoreOutOfRangeRejected(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{})
	f.seed(t)

	tests := []struct {
		name string
		body string
	}{
		{"huge adjusted score", `{"orderId":"R123456789","score":500,"adjustedScore":1e20}`},
		{"negative adjusted score", `{"orderId":"R123456789","adjustedScore":-1}`},
		{"score above scale", `{"orderId":"R123456789","score":1001,"adjustedScore":900}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.postSigned(tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	assert.Zero(t, f.risks.Count())
	o, err := f.orders.FindByNumber(context.Background(), "R123456789")
	require.NoError(t, err)
	assert.False(t, o.Approved())
}

type outOfRangeProcessor struct{}

func (outOfRangeProcessor) Execute(ctx context.Context, event risk.CaseEvent) (*review.ProcessCaseUpdateOutput, error) {
	return nil, fmt.Errorf("%w: %v", risk.ErrScoreOutOfRange, event.AdjustedScore)
}

func TestWebhook_ProcessorScoreRangeErrorIsBadRequest(t *testing.T) {
	m := metrics.NewNop()
	verifier := signature.NewVerifier(testSecret)
	h := NewWebhookHandler(outOfRangeProcessor{}, verifier, WebhookConfig{}, m, zap.NewNop())

	body := `{"orderId":"R123456789","adjustedScore":900}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud-review/orders", strings.NewReader(body))
	req.Header.Set(signature.DefaultHeader, verifier.Sign([]byte(body)))
	rec := httptest.NewRecorder()
	h.CaseUpdate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhookRequests.WithLabelValues(outcomeBadRequest)))
}

func TestWebhook_BodyTooLarge(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{MaxBodyBytes: 16})
	f.seed(t)

	rec := f.postSigned(`{"orderId":"R123456789","adjustedScore":900}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 1.0, f.outcome(outcomeBadRequest))
}

func TestWebhook_UnknownOrder(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{})

	rec := f.postSigned(`{"orderId":"NOPE","adjustedScore":900}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, f.outcome(outcomeNotFound))
}

type failingProcessor struct{}

func (failingProcessor) Execute(ctx context.Context, event risk.CaseEvent) (*review.ProcessCaseUpdateOutput, error) {
	return nil, errors.New("database unavailable")
}

func TestWebhook_ProcessingFailure(t *testing.T) {
	m := metrics.NewNop()
	verifier := signature.NewVerifier(testSecret)
	h := NewWebhookHandler(failingProcessor{}, verifier, WebhookConfig{}, m, zap.NewNop())

	body := `{"orderId":"R123456789","adjustedScore":900}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fraud-review/orders", strings.NewReader(body))
	req.Header.Set(signature.DefaultHeader, verifier.Sign([]byte(body)))
	rec := httptest.NewRecorder()
	h.CaseUpdate(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database unavailable")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhookRequests.WithLabelValues(outcomeError)))
}

type stubEnqueuer struct {
	number string
	err    error
}

func (s *stubEnqueuer) Enqueue(ctx context.Context, orderNumber string) error {
	s.number = orderNumber
	return s.err
}

func TestCaseHandler_CreateCase(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"queued", nil, http.StatusAccepted},
		{"unknown order", order.ErrOrderNotFound, http.StatusNotFound},
		{"invalid number", order.ErrInvalidOrderNumber, http.StatusBadRequest},
		{"broker down", errors.New("dial tcp: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enq := &stubEnqueuer{err: tt.err}
			h := NewCaseHandler(enq, zap.NewNop())

			mux := http.NewServeMux()
			mux.HandleFunc("POST /orders/{number}/case", h.CreateCase)
			req := httptest.NewRequest(http.MethodPost, "/orders/R123/case", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "R123", enq.number)
		})
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Ready(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	broken := pingFunc(func(context.Context) error { return errors.New("refused") })

	t.Run("all healthy", func(t *testing.T) {
		h := NewHealthHandler("test", map[string]HealthChecker{"database": healthy, "redis": nil})
		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, map[string]string{"database": "healthy"}, resp.Services)
	})

	t.Run("one unhealthy", func(t *testing.T) {
		h := NewHealthHandler("test", map[string]HealthChecker{"database": healthy, "redis": broken})
		rec := httptest.NewRecorder()
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var resp HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "not ready", resp.Status)
		assert.Equal(t, "unhealthy: refused", resp.Services["redis"])
	})
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}
