package casecreation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"order-fraud-review/internal/domain/order"
)

// Job asks the worker to open a vendor case for one order
type Job struct {
	JobID       string    `json:"job_id"`
	OrderNumber string    `json:"order_number"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// Enqueuer schedules case creation off the request path
type Enqueuer interface {
	Enqueue(ctx context.Context, orderNumber string) error
}

// Publisher delivers a keyed message to the job queue
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// QueueEnqueuer publishes case creation jobs
type QueueEnqueuer struct {
	orders    order.Repository
	publisher Publisher
	logger    *zap.Logger
}

// NewQueueEnqueuer creates an enqueuer. orders may be nil to skip the existence check.
func NewQueueEnqueuer(orders order.Repository, publisher Publisher, logger *zap.Logger) *QueueEnqueuer {
	return &QueueEnqueuer{orders: orders, publisher: publisher, logger: logger}
}

// Enqueue publishes a job keyed by the order number
func (e *QueueEnqueuer) Enqueue(ctx context.Context, orderNumber string) error {
	if orderNumber == "" {
		return order.ErrInvalidOrderNumber
	}
	if e.orders != nil {
		if _, err := e.orders.FindByNumber(ctx, orderNumber); err != nil {
			return err
		}
	}

	job := Job{
		JobID:       uuid.NewString(),
		OrderNumber: orderNumber,
		EnqueuedAt:  time.Now().UTC(),
	}
	value, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	e.logger.Info("Queuing case creation event",
		zap.String("order_number", orderNumber),
		zap.String("job_id", job.JobID),
	)

	if err := e.publisher.Publish(ctx, orderNumber, value); err != nil {
		return fmt.Errorf("failed to enqueue case creation: %w", err)
	}
	return nil
}
