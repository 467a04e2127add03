package sender

import (
	"os"
	"strconv"
	"time"

	"github.com/prilive-com/gramsea/tg"
)

// Config holds sender configuration.
type Config struct {
	// Bot token
	Token tg.SecretToken

	// API settings
	BaseURL        string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	KeepAlive      time.Duration
	MaxIdleConns   int
	IdleTimeout    time.Duration

	// Network retries done by the transport. Classified API errors are
	// never retried.
	TransportRetries    int
	TransportRetryDelay time.Duration

	// Rate limiting. A non-positive RPS disables that limit.
	GlobalRPS       float64
	GlobalBurst     int
	PerChatRPS      float64
	PerChatBurst    int
	MaxChatLimiters int

	// Circuit breaker
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration

	// Mass sending
	MassConcurrency int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:             "https://api.telegram.org",
		RequestTimeout:      30 * time.Second,
		ConnectTimeout:      10 * time.Second,
		KeepAlive:           30 * time.Second,
		MaxIdleConns:        100,
		IdleTimeout:         90 * time.Second,
		TransportRetries:    0,
		TransportRetryDelay: 500 * time.Millisecond,
		GlobalRPS:           tg.RateGlobal,
		GlobalBurst:         10,
		PerChatRPS:          1,
		PerChatBurst:        3,
		MaxChatLimiters:     10000,
		BreakerMaxRequests:  5,
		BreakerInterval:     60 * time.Second,
		BreakerTimeout:      30 * time.Second,
		MassConcurrency:     DefaultMassConcurrency,
	}
}

// LoadConfig loads configuration from environment variables.
// Unset variables keep their defaults; malformed values are reported as
// *tg.ConfigError.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Token = tg.SecretToken(getEnv("TELEGRAM_BOT_TOKEN", ""))

	if url := getEnv("TELEGRAM_API_BASE_URL", ""); url != "" {
		cfg.BaseURL = url
	}

	var err error
	set := func(e error) {
		if err == nil {
			err = e
		}
	}

	set(envDuration("REQUEST_TIMEOUT", &cfg.RequestTimeout))
	set(envDuration("CONNECT_TIMEOUT", &cfg.ConnectTimeout))
	set(envInt("TRANSPORT_RETRIES", &cfg.TransportRetries))
	set(envDuration("TRANSPORT_RETRY_DELAY", &cfg.TransportRetryDelay))
	set(envFloat("RATE_LIMIT_REQUESTS", &cfg.GlobalRPS))
	set(envInt("RATE_LIMIT_BURST", &cfg.GlobalBurst))
	set(envFloat("PER_CHAT_RPS", &cfg.PerChatRPS))
	set(envInt("PER_CHAT_BURST", &cfg.PerChatBurst))
	set(envInt("MAX_CHAT_LIMITERS", &cfg.MaxChatLimiters))
	set(envUint32("BREAKER_MAX_REQUESTS", &cfg.BreakerMaxRequests))
	set(envDuration("BREAKER_INTERVAL", &cfg.BreakerInterval))
	set(envDuration("BREAKER_TIMEOUT", &cfg.BreakerTimeout))
	set(envInt("MASS_CONCURRENCY", &cfg.MassConcurrency))
	if err != nil {
		return nil, err
	}

	if cfg.TransportRetries < 0 {
		return nil, tg.NewConfigError("TRANSPORT_RETRIES", "must not be negative")
	}
	if cfg.MassConcurrency < 1 {
		return nil, tg.NewConfigError("MASS_CONCURRENCY", "must be at least 1")
	}
	return &cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return tg.NewConfigError(key, "invalid duration "+strconv.Quote(v))
	}
	*dst = d
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return tg.NewConfigError(key, "invalid integer "+strconv.Quote(v))
	}
	*dst = i
	return nil
}

func envUint32(key string, dst *uint32) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	i, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return tg.NewConfigError(key, "invalid unsigned integer "+strconv.Quote(v))
	}
	*dst = uint32(i)
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return tg.NewConfigError(key, "invalid number "+strconv.Quote(v))
	}
	*dst = f
	return nil
}
