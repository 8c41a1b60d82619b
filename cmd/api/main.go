package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"order-fraud-review/internal/application/casecreation"
	"order-fraud-review/internal/application/review"
	"order-fraud-review/internal/domain/order"
	"order-fraud-review/internal/domain/risk"
	"order-fraud-review/internal/infrastructure/cache/redis"
	"order-fraud-review/internal/infrastructure/database/memory"
	"order-fraud-review/internal/infrastructure/database/postgres"
	"order-fraud-review/internal/infrastructure/http/router"
	"order-fraud-review/internal/infrastructure/messaging/kafka"
	"order-fraud-review/internal/infrastructure/vendor"
	"order-fraud-review/internal/interfaces/http/handler"
	"order-fraud-review/internal/pkg/config"
	"order-fraud-review/internal/pkg/lock"
	"order-fraud-review/internal/pkg/logger"
	"order-fraud-review/internal/pkg/metrics"
	"order-fraud-review/internal/pkg/signature"
	"order-fraud-review/internal/pkg/tracing"
)

const version = "1.0.0"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config file, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}

	log := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	log.Info("Starting Fraud Review API",
		zap.String("version", version),
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracerProvider(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			log.Warn("Tracing disabled", zap.Error(err))
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					log.Warn("tracer shutdown failed", zap.Error(err))
				}
			}()
		}
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	} else {
		m = metrics.NewNop()
	}

	// Database connection
	var (
		dbClient  *postgres.Client
		orderRepo order.Repository
		riskRepo  risk.Repository
	)

	dbClient, err = postgres.NewClient(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Warn("Database connection failed (running in standalone mode with in-memory stores)", zap.Error(err))
		dbClient = nil
		orderRepo = memory.NewOrderRepository()
		riskRepo = memory.NewRiskRepository()
	} else {
		log.Info("Connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.Int("port", cfg.Database.Port))
		if cfg.Database.AutoMigrate {
			if err := dbClient.AutoMigrate(); err != nil {
				log.Fatal("database migration failed", zap.Error(err))
			}
		}
		orderRepo = postgres.NewOrderRepository(dbClient)
		riskRepo = postgres.NewRiskRepository(dbClient)
	}

	// Per-order serialization, shared across instances when Redis is available
	var (
		redisClient *redis.Client
		locker      lock.Locker = lock.NewKeyedLocker()
	)
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("Redis connection failed (falling back to in-process order locks)", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("Connected to Redis", zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
			locker = redis.NewOrderLock(redisClient, cfg.Webhook.LockTTL, log)
		}
	}

	// Review pipeline
	engine := risk.NewEngine(risk.Policy{
		ScoreThreshold:           cfg.Webhook.GetScoreThreshold(),
		ApproveOnGoodDisposition: cfg.Webhook.ApproveOnGoodDisposition,
	})
	executor := review.NewExecutor(orderRepo, cfg.Webhook.ApproverName, m, log)
	processCaseUpdate := review.NewProcessCaseUpdateUseCase(
		orderRepo,
		risk.NewService(riskRepo, log),
		engine,
		executor,
		locker,
		m,
		log,
		cfg.Webhook.LockTimeout,
	)

	g, gctx := errgroup.WithContext(ctx)

	// Case creation
	var (
		caseHandler *handler.CaseHandler
		producer    *kafka.Producer
	)
	if cfg.CaseCreation.Enabled {
		producer = kafka.NewProducer(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.CaseCreationTopic))
		caseHandler = handler.NewCaseHandler(casecreation.NewQueueEnqueuer(orderRepo, producer, log), log)

		vendorClient := vendor.NewClient(vendor.Config{
			APIKey:     cfg.Vendor.APIKey,
			BaseURL:    cfg.Vendor.BaseURL,
			Timeout:    cfg.Vendor.Timeout,
			RetryCount: cfg.Vendor.RetryCount,
		}, log)
		worker := casecreation.NewWorker(orderRepo, vendorClient, m, log, casecreation.WorkerConfig{
			MaxAttempts: cfg.Kafka.MaxAttempts,
			Backoff:     time.Second,
		})
		consumer := kafka.NewConsumer(func() kafka.MessageReader {
			return kafka.NewReader(kafka.ReaderConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.CaseCreationTopic,
				GroupID: cfg.Kafka.ConsumerGroup,
			})
		}, cfg.CaseCreation.Workers, log)

		g.Go(func() error {
			return runConsumer(gctx, consumer, worker, log)
		})
		log.Info("Case creation enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.CaseCreationTopic),
			zap.Int("workers", cfg.CaseCreation.Workers),
		)
	}

	// Initialize handlers
	webhookHandler := handler.NewWebhookHandler(
		processCaseUpdate,
		signature.NewVerifier(cfg.SigningKey()),
		handler.WebhookConfig{
			SignatureHeader: cfg.Webhook.SignatureHeader,
			MaxBodyBytes:    cfg.Webhook.MaxBodyBytes,
		},
		m,
		log,
	)

	checks := map[string]handler.HealthChecker{}
	if dbClient != nil {
		checks["database"] = dbClient
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	healthHandler := handler.NewHealthHandler(version, checks)

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = handler.MetricsHandler(prometheus.DefaultGatherer)
	}

	// Create router
	r := router.NewRouter(webhookHandler, caseHandler, healthHandler, metricsHandler, cfg.Metrics.Path)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("service stopped with error", zap.Error(err))
	}

	// Close connections
	if producer != nil {
		producer.Close()
	}
	if dbClient != nil {
		dbClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	log.Info("Server stopped")
}

// runConsumer restarts the consumer after a job exhausts its attempts, so the
// uncommitted message is redelivered instead of dropped.
func runConsumer(ctx context.Context, consumer *kafka.Consumer, worker *casecreation.Worker, log *zap.Logger) error {
	const restartDelay = 5 * time.Second

	for {
		err := consumer.Run(ctx, worker.Handle)
		if ctx.Err() != nil {
			return nil
		}
		log.Error("case creation consumer stopped, restarting", zap.Error(err), zap.Duration("delay", restartDelay))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(restartDelay):
		}
	}
}
