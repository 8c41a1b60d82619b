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
	"order-fraud-review/internal/pkg/metrics"
)

// Executor performs the approve and cancel transitions on persisted orders
type Executor struct {
	orders   order.Repository
	approver string
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewExecutor creates an executor that approves on behalf of approver
func NewExecutor(orders order.Repository, approver string, m *metrics.Metrics, logger *zap.Logger) *Executor {
	return &Executor{
		orders:   orders,
		approver: approver,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Approve approves the order's contents and readies its shipments.
// Fails with order.ErrAlreadyApproved rather than approving twice.
func (e *Executor) Approve(ctx context.Context, number string) (*order.Order, error) {
	return e.transition(ctx, "approve", number, func(o *order.Order) error {
		return o.Approve(e.approver, e.now())
	})
}

// Cancel cancels the order. The order's own transition error is returned as is.
func (e *Executor) Cancel(ctx context.Context, number string) (*order.Order, error) {
	return e.transition(ctx, "cancel", number, func(o *order.Order) error {
		return o.Cancel(e.now())
	})
}

func (e *Executor) transition(ctx context.Context, action, number string, fn func(o *order.Order) error) (*order.Order, error) {
	ctx, span := otel.Tracer("review").Start(ctx, "Executor."+action)
	defer span.End()
	span.SetAttributes(attribute.String("order.number", number))

	o, err := e.orders.UpdateWithLock(ctx, number, fn)
	e.metrics.RecordOrderAction(action, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error("order transition failed",
			zap.String("action", action),
			zap.String("order_number", number),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to %s order %s: %w", action, number, err)
	}

	e.logger.Info("order transitioned",
		zap.String("action", action),
		zap.String("order_number", number),
		zap.String("shipment_state", string(o.ShipmentState)),
	)
	return o, nil
}
