package sender

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/prilive-com/gramsea/internal/resilience"
)

// Sleeper abstracts time-based waiting between transport retries.
type Sleeper = resilience.Sleeper

// CircuitBreakerSettings configures the circuit breaker behavior.
type CircuitBreakerSettings struct {
	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	// If 0, internal counts never reset in closed state.
	Interval time.Duration

	// Timeout is the duration of the open state before transitioning to half-open.
	Timeout time.Duration

	// ReadyToTrip determines if breaker should trip based on failure counts.
	// If nil, the breaker trips at 50% failures once 3 requests were seen.
	ReadyToTrip func(counts gobreaker.Counts) bool
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client. Timeout options no longer apply.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = client
	}
}

// WithBaseURL sets the API base URL (useful for testing or a local Bot API server).
func WithBaseURL(url string) Option {
	return func(g *Gateway) {
		g.config.BaseURL = url
	}
}

// WithRetries sets how many times a request is repeated after a network
// failure. API errors are never retried.
func WithRetries(n int) Option {
	return func(g *Gateway) {
		g.config.TransportRetries = max(n, 0)
	}
}

// WithRetryDelay sets the fixed wait between network retries.
func WithRetryDelay(d time.Duration) Option {
	return func(g *Gateway) {
		g.config.TransportRetryDelay = d
	}
}

// WithSleeper sets a custom sleeper for retry timing (useful for testing).
func WithSleeper(s Sleeper) Option {
	return func(g *Gateway) {
		g.sleeper = s
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.config.RequestTimeout = d
	}
}

// WithRateLimit sets the global rate limit. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *Gateway) {
		g.config.GlobalRPS = rps
		g.config.GlobalBurst = burst
	}
}

// WithPerChatRateLimit sets the per-chat rate limit. rps <= 0 disables it.
func WithPerChatRateLimit(rps float64, burst int) Option {
	return func(g *Gateway) {
		g.config.PerChatRPS = rps
		g.config.PerChatBurst = burst
	}
}

// WithCircuitBreakerSettings configures the circuit breaker.
func WithCircuitBreakerSettings(settings CircuitBreakerSettings) Option {
	return func(g *Gateway) {
		g.config.BreakerMaxRequests = settings.MaxRequests
		g.config.BreakerInterval = settings.Interval
		g.config.BreakerTimeout = settings.Timeout
		g.readyToTrip = settings.ReadyToTrip
	}
}

// WithMassConcurrency sets the default concurrency of mass senders.
func WithMassConcurrency(n int) Option {
	return func(g *Gateway) {
		g.config.MassConcurrency = max(n, 1)
	}
}
