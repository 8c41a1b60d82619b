package config

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	if c.SigningKey() == "" {
		return errors.New("webhook.hmac_secret or vendor.api_key must be set")
	}

	if c.Webhook.SignatureHeader == "" {
		return errors.New("webhook.signature_header must not be empty")
	}

	threshold, err := decimal.NewFromString(c.Webhook.ScoreThreshold)
	if err != nil {
		return errors.New("webhook.score_threshold must be numeric")
	}
	if threshold.IsNegative() {
		return errors.New("webhook.score_threshold must not be negative")
	}

	if c.Webhook.LockTimeout <= 0 {
		return errors.New("webhook.lock_timeout must be positive")
	}
	if c.Webhook.LockTTL < c.Webhook.LockTimeout {
		return errors.New("webhook.lock_ttl should be at least webhook.lock_timeout")
	}

	if c.Metrics.Enabled && c.Metrics.Path != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}

	if c.CaseCreation.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is required when case creation is enabled")
		}
		if c.CaseCreation.Workers <= 0 {
			return errors.New("case_creation.workers must be positive")
		}
		if c.Vendor.APIKey == "" {
			return errors.New("vendor.api_key is required when case creation is enabled")
		}
	}

	return nil
}
