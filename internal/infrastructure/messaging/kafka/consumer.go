package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MessageReader is the part of *kafka.Reader the consumer uses
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// HandlerFunc processes one message value. A nil error commits the offset.
type HandlerFunc func(ctx context.Context, key string, value []byte) error

// ReaderConfig identifies the topic and consumer group
type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewReader creates a consumer-group reader that commits explicitly
func NewReader(cfg ReaderConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
}

// Consumer runs a pool of readers in one consumer group
type Consumer struct {
	newReader func() MessageReader
	workers   int
	logger    *zap.Logger
}

// NewConsumer creates a consumer with one reader per worker
func NewConsumer(newReader func() MessageReader, workers int, logger *zap.Logger) *Consumer {
	if workers < 1 {
		workers = 1
	}
	return &Consumer{newReader: newReader, workers: workers, logger: logger}
}

// Run blocks until ctx is canceled or a reader fails for good
func (c *Consumer) Run(ctx context.Context, handle HandlerFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.workers; i++ {
		reader := c.newReader()
		worker := i
		g.Go(func() error {
			defer reader.Close()
			c.logger.Info("case creation consumer started", zap.Int("worker", worker))
			return consume(ctx, reader, handle, c.logger)
		})
	}
	return g.Wait()
}

// consume fetches, handles and commits until ctx ends. Handler errors leave the offset uncommitted.
func consume(ctx context.Context, reader MessageReader, handle HandlerFunc, logger *zap.Logger) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("failed to fetch message", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		carrier := HeaderCarrier(msg.Headers)
		msgCtx := otel.GetTextMapPropagator().Extract(ctx, &carrier)

		if err := handle(msgCtx, string(msg.Key), msg.Value); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("message not processed, offset left uncommitted",
				zap.String("key", string(msg.Key)),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return err
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("failed to commit message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}
