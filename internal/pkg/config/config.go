package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Vendor       VendorConfig       `mapstructure:"vendor"`
	Webhook      WebhookConfig      `mapstructure:"webhook"`
	CaseCreation CaseCreationConfig `mapstructure:"case_creation"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Log          LogConfig          `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"`
	CaseCreationTopic string   `mapstructure:"case_creation_topic"`
	ConsumerGroup     string   `mapstructure:"consumer_group"`
	MaxAttempts       int      `mapstructure:"max_attempts"`
}

// VendorConfig holds the fraud review vendor's API settings
type VendorConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

// WebhookConfig holds inbound case update settings
type WebhookConfig struct {
	// HMACSecret keys the signature check. Empty means the vendor API key is used.
	HMACSecret      string `mapstructure:"hmac_secret"`
	SignatureHeader string `mapstructure:"signature_header"`

	// ScoreThreshold is a string for YAML compatibility
	ScoreThreshold           string `mapstructure:"score_threshold"`
	ApproveOnGoodDisposition bool   `mapstructure:"approve_on_good_disposition"`
	ApproverName             string `mapstructure:"approver_name"`

	LockTimeout  time.Duration `mapstructure:"lock_timeout"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// SigningKey returns the key used to verify webhook signatures
func (c *Config) SigningKey() string {
	if c.Webhook.HMACSecret != "" {
		return c.Webhook.HMACSecret
	}
	return c.Vendor.APIKey
}

// GetScoreThreshold returns the approval threshold as decimal
func (c *WebhookConfig) GetScoreThreshold() decimal.Decimal {
	d, err := decimal.NewFromString(c.ScoreThreshold)
	if err != nil {
		return decimal.NewFromInt(500)
	}
	return d
}

// CaseCreationConfig controls the outbound case creation worker
type CaseCreationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Workers int  `mapstructure:"workers"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "fraud_review",
			Password:        "",
			Name:            "storefront",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     false,
		},
		Redis: RedisConfig{
			Enabled:      true,
			Host:         "localhost",
			Port:         6379,
			Password:     "",
			DB:           0,
			PoolSize:     10,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:           []string{"localhost:9092"},
			CaseCreationTopic: "fraud-review.case-creation",
			ConsumerGroup:     "fraud-review-case-worker",
			MaxAttempts:       5,
		},
		Vendor: VendorConfig{
			APIKey:     "",
			BaseURL:    "https://api.signifyd.com/v2",
			Timeout:    10 * time.Second,
			RetryCount: 3,
		},
		Webhook: WebhookConfig{
			HMACSecret:               "",
			SignatureHeader:          "X-SIGNIFYD-SEC-HMAC-SHA256",
			ScoreThreshold:           "500",
			ApproveOnGoodDisposition: false,
			ApproverName:             "fraud-review",
			LockTimeout:              5 * time.Second,
			LockTTL:                  30 * time.Second,
			MaxBodyBytes:             1 << 20,
		},
		CaseCreation: CaseCreationConfig{
			Enabled: false,
			Workers: 2,
		},
		Tracing: TracingConfig{
			Enabled:        false,
			ServiceName:    "order-fraud-review",
			JaegerEndpoint: "http://localhost:14268/api/traces",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 10,
			MaxAgeDays: 30,
		},
	}
}
