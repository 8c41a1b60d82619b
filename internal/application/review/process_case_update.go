package review

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"order-fraud-review/internal/domain/order"
	"order-fraud-review/internal/domain/risk"
	"order-fraud-review/internal/pkg/lock"
	"order-fraud-review/internal/pkg/metrics"
)

// ProcessCaseUpdateOutput reports what a case update did
type ProcessCaseUpdateOutput struct {
	OrderNumber         string        `json:"order_number"`
	Score               int           `json:"score"`
	CaseIDRecorded      bool          `json:"case_id_recorded"`
	DispositionRecorded bool          `json:"disposition_recorded"`
	Decision            risk.Decision `json:"decision"`
	Reason              string        `json:"reason"`
}

// ProcessCaseUpdateUseCase applies one vendor case update to its order
type ProcessCaseUpdateUseCase struct {
	orders      order.Repository
	riskService *risk.Service
	engine      *risk.Engine
	executor    *Executor
	locker      lock.Locker
	metrics     *metrics.Metrics
	logger      *zap.Logger

	// Config
	lockTimeout time.Duration
}

// NewProcessCaseUpdateUseCase creates a new case update use case
func NewProcessCaseUpdateUseCase(
	orders order.Repository,
	riskService *risk.Service,
	engine *risk.Engine,
	executor *Executor,
	locker lock.Locker,
	m *metrics.Metrics,
	logger *zap.Logger,
	lockTimeout time.Duration,
) *ProcessCaseUpdateUseCase {
	return &ProcessCaseUpdateUseCase{
		orders:      orders,
		riskService: riskService,
		engine:      engine,
		executor:    executor,
		locker:      locker,
		metrics:     m,
		logger:      logger,
		lockTimeout: lockTimeout,
	}
}

// Execute records the vendor's assessment and approves or cancels the order when the rules say so.
// Returns order.ErrOrderNotFound (wrapped) before touching any state when the order is unknown.
func (uc *ProcessCaseUpdateUseCase) Execute(ctx context.Context, event risk.CaseEvent) (*ProcessCaseUpdateOutput, error) {
	ctx, span := otel.Tracer("review").Start(ctx, "ProcessCaseUpdate")
	defer span.End()
	span.SetAttributes(attribute.String("order.number", event.OrderNumber))

	out, err := uc.execute(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("review.decision", string(out.Decision)))
	return out, nil
}

func (uc *ProcessCaseUpdateUseCase) execute(ctx context.Context, event risk.CaseEvent) (*ProcessCaseUpdateOutput, error) {
	logger := uc.logger.With(zap.String("order_number", event.OrderNumber))

	if err := event.CheckScores(); err != nil {
		return nil, err
	}

	if _, err := uc.orders.FindByNumber(ctx, event.OrderNumber); err != nil {
		return nil, fmt.Errorf("failed to locate order: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, uc.lockTimeout)
	release, err := uc.locker.Acquire(lockCtx, event.OrderNumber)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to lock order %s: %w", event.OrderNumber, err)
	}
	defer release()

	// state may have moved while waiting for the lock
	o, err := uc.orders.FindByNumber(ctx, event.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to locate order: %w", err)
	}

	out := &ProcessCaseUpdateOutput{
		OrderNumber: o.Number,
		Score:       event.StoredScore(),
	}

	if _, err := uc.riskService.SetScore(ctx, o.ID, out.Score); err != nil {
		return nil, err
	}

	if event.CaseID != nil {
		if out.CaseIDRecorded, err = uc.riskService.SetCaseID(ctx, o.ID, *event.CaseID); err != nil {
			return nil, err
		}
	}

	if d, ok := risk.ParseDisposition(event.Disposition()); ok {
		if out.DispositionRecorded, err = uc.riskService.SetCaseDisposition(ctx, o.ID, d); err != nil {
			return nil, err
		}
	}

	verdict := uc.engine.Decide(o, event)
	out.Decision = verdict.Decision
	out.Reason = verdict.Reason
	uc.metrics.RecordDecision(string(verdict.Decision))

	logger.Info("case update decided",
		zap.Int("score", out.Score),
		zap.Float64("adjusted_score", event.AdjustedScore),
		zap.String("disposition", event.Disposition()),
		zap.String("decision", string(verdict.Decision)),
		zap.String("reason", verdict.Reason),
	)

	switch verdict.Decision {
	case risk.DecisionApprove:
		if _, err := uc.executor.Approve(ctx, o.Number); err != nil {
			return nil, err
		}
	case risk.DecisionCancel:
		if _, err := uc.executor.Cancel(ctx, o.Number); err != nil {
			return nil, err
		}
	}

	return out, nil
}
