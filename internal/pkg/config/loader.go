package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "FRAUD_REVIEW"

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// A missing .env is the normal case outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys absent from the file
func setDefaults(v *viper.Viper, cfg *Config) {
	// Server
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	// Database
	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.name", cfg.Database.Name)
	v.SetDefault("database.ssl_mode", cfg.Database.SSLMode)
	v.SetDefault("database.max_open_conns", cfg.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", cfg.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", cfg.Database.ConnMaxLifetime)
	v.SetDefault("database.auto_migrate", cfg.Database.AutoMigrate)

	// Redis
	v.SetDefault("redis.enabled", cfg.Redis.Enabled)
	v.SetDefault("redis.host", cfg.Redis.Host)
	v.SetDefault("redis.port", cfg.Redis.Port)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)
	v.SetDefault("redis.pool_size", cfg.Redis.PoolSize)
	v.SetDefault("redis.read_timeout", cfg.Redis.ReadTimeout)
	v.SetDefault("redis.write_timeout", cfg.Redis.WriteTimeout)

	// Kafka
	v.SetDefault("kafka.brokers", cfg.Kafka.Brokers)
	v.SetDefault("kafka.case_creation_topic", cfg.Kafka.CaseCreationTopic)
	v.SetDefault("kafka.consumer_group", cfg.Kafka.ConsumerGroup)
	v.SetDefault("kafka.max_attempts", cfg.Kafka.MaxAttempts)

	// Vendor
	v.SetDefault("vendor.api_key", cfg.Vendor.APIKey)
	v.SetDefault("vendor.base_url", cfg.Vendor.BaseURL)
	v.SetDefault("vendor.timeout", cfg.Vendor.Timeout)
	v.SetDefault("vendor.retry_count", cfg.Vendor.RetryCount)

	// Webhook
	v.SetDefault("webhook.hmac_secret", cfg.Webhook.HMACSecret)
	v.SetDefault("webhook.signature_header", cfg.Webhook.SignatureHeader)
	v.SetDefault("webhook.score_threshold", cfg.Webhook.ScoreThreshold)
	v.SetDefault("webhook.approve_on_good_disposition", cfg.Webhook.ApproveOnGoodDisposition)
	v.SetDefault("webhook.approver_name", cfg.Webhook.ApproverName)
	v.SetDefault("webhook.lock_timeout", cfg.Webhook.LockTimeout)
	v.SetDefault("webhook.lock_ttl", cfg.Webhook.LockTTL)
	v.SetDefault("webhook.max_body_bytes", cfg.Webhook.MaxBodyBytes)

	// Case creation
	v.SetDefault("case_creation.enabled", cfg.CaseCreation.Enabled)
	v.SetDefault("case_creation.workers", cfg.CaseCreation.Workers)

	// Observability
	v.SetDefault("tracing.enabled", cfg.Tracing.Enabled)
	v.SetDefault("tracing.service_name", cfg.Tracing.ServiceName)
	v.SetDefault("tracing.jaeger_endpoint", cfg.Tracing.JaegerEndpoint)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file_path", cfg.Log.FilePath)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)
}
