package casecreation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"order-fraud-review/internal/domain/order"
	"order-fraud-review/internal/pkg/metrics"
)

// ErrCaseRejected is returned by a CaseCreator when the vendor refuses the payload; retrying cannot help
var ErrCaseRejected = errors.New("case rejected by vendor")

// CaseCreator opens a case with the vendor and returns its investigation id
type CaseCreator interface {
	CreateCase(ctx context.Context, payload CasePayload) (int64, error)
}

// Job results recorded in metrics
const (
	ResultSubmitted = "submitted"
	ResultRejected  = "rejected"
	ResultInvalid   = "invalid"
	ResultFailed    = "failed"
)

// WorkerConfig bounds in-place retries of transient failures
type WorkerConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Worker turns queued jobs into vendor cases
type Worker struct {
	orders  order.Repository
	creator CaseCreator
	metrics *metrics.Metrics
	logger  *zap.Logger
	cfg     WorkerConfig
}

// NewWorker creates a case creation worker
func NewWorker(orders order.Repository, creator CaseCreator, m *metrics.Metrics, logger *zap.Logger, cfg WorkerConfig) *Worker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Worker{orders: orders, creator: creator, metrics: m, logger: logger, cfg: cfg}
}

// Handle processes one queued job. A nil return means the job is finished, successfully or
// permanently failed; an error means it should be delivered again.
func (w *Worker) Handle(ctx context.Context, key string, value []byte) error {
	var job Job
	if err := json.Unmarshal(value, &job); err != nil || job.OrderNumber == "" {
		w.logger.Error("dropping malformed case creation job", zap.String("key", key), zap.Error(err))
		w.metrics.RecordCaseJob(ResultInvalid)
		return nil
	}

	ctx, span := otel.Tracer("casecreation").Start(ctx, "CaseCreation.Handle")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.number", job.OrderNumber),
		attribute.String("job.id", job.JobID),
	)

	logger := w.logger.With(zap.String("order_number", job.OrderNumber), zap.String("job_id", job.JobID))

	for attempt := 1; ; attempt++ {
		caseID, err := w.submit(ctx, job.OrderNumber)
		if err == nil {
			logger.Info("case created", zap.Int64("investigation_id", caseID))
			w.metrics.RecordCaseJob(ResultSubmitted)
			return nil
		}

		if errors.Is(err, order.ErrOrderNotFound) || errors.Is(err, ErrCaseRejected) {
			logger.Warn("case creation failed permanently", zap.Error(err))
			w.metrics.RecordCaseJob(ResultRejected)
			span.SetStatus(codes.Error, err.Error())
			return nil
		}

		if attempt >= w.cfg.MaxAttempts {
			logger.Error("case creation failed, giving up for now", zap.Int("attempts", attempt), zap.Error(err))
			w.metrics.RecordCaseJob(ResultFailed)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		logger.Warn("case creation failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.cfg.Backoff * time.Duration(attempt)):
		}
	}
}

func (w *Worker) submit(ctx context.Context, orderNumber string) (int64, error) {
	o, err := w.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to load order: %w", err)
	}
	return w.creator.CreateCase(ctx, SerializeOrder(o))
}
