package receiver

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prilive-com/gramsea/tg"
)

// Config holds long polling configuration.
type Config struct {
	Timeout            time.Duration // getUpdates long-poll wait, 0-60s
	Limit              int           // Max updates per request (1-100)
	MaxErrors          int           // Max consecutive errors (0 = unlimited)
	AllowedUpdates     []string      // Filter update types
	DeleteWebhookFirst bool          // Delete webhook before the first poll
	RetryInitialDelay  time.Duration
	RetryMaxDelay      time.Duration
	RetryBackoffFactor float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:            25 * time.Second,
		Limit:              100,
		MaxErrors:          10,
		RetryInitialDelay:  time.Second,
		RetryMaxDelay:      60 * time.Second,
		RetryBackoffFactor: 2.0,
	}
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("POLLING_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, tg.NewConfigError("POLLING_TIMEOUT", "invalid duration "+strconv.Quote(v))
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("POLLING_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, tg.NewConfigError("POLLING_LIMIT", "invalid integer "+strconv.Quote(v))
		}
		cfg.Limit = n
	}
	if v := os.Getenv("POLLING_MAX_ERRORS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, tg.NewConfigError("POLLING_MAX_ERRORS", "must be a non-negative integer")
		}
		cfg.MaxErrors = n
	}

	cfg.DeleteWebhookFirst = strings.EqualFold(os.Getenv("POLLING_DELETE_WEBHOOK"), "true")

	if updates := os.Getenv("ALLOWED_UPDATES"); updates != "" {
		for _, u := range strings.Split(updates, ",") {
			if trimmed := strings.TrimSpace(u); trimmed != "" {
				cfg.AllowedUpdates = append(cfg.AllowedUpdates, trimmed)
			}
		}
	}

	if v := os.Getenv("POLLING_RETRY_INITIAL_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, tg.NewConfigError("POLLING_RETRY_INITIAL_DELAY", "invalid duration "+strconv.Quote(v))
		}
		cfg.RetryInitialDelay = d
	}
	if v := os.Getenv("POLLING_RETRY_MAX_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, tg.NewConfigError("POLLING_RETRY_MAX_DELAY", "invalid duration "+strconv.Quote(v))
		}
		cfg.RetryMaxDelay = d
	}
	if v := os.Getenv("POLLING_RETRY_BACKOFF_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, tg.NewConfigError("POLLING_RETRY_BACKOFF_FACTOR", "invalid number "+strconv.Quote(v))
		}
		cfg.RetryBackoffFactor = f
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the ranges getUpdates accepts.
func (c Config) Validate() error {
	if c.Timeout < 0 || c.Timeout > 60*time.Second {
		return tg.NewConfigError("POLLING_TIMEOUT", "must be 0-60s")
	}
	if c.Limit < 1 || c.Limit > 100 {
		return tg.NewConfigError("POLLING_LIMIT", "must be 1-100")
	}
	if c.RetryBackoffFactor < 1 {
		return tg.NewConfigError("POLLING_RETRY_BACKOFF_FACTOR", "must be at least 1")
	}
	return nil
}
