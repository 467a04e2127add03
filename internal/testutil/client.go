package testutil

import (
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/gramsea/sender"
)

// BreakerNeverTrip returns settings where the breaker never opens.
func BreakerNeverTrip() sender.CircuitBreakerSettings {
	return sender.CircuitBreakerSettings{
		MaxRequests: 100,
		Timeout:     time.Hour,
		ReadyToTrip: func(gobreaker.Counts) bool { return false },
	}
}

// BreakerAggressiveTrip returns settings that open the breaker after two
// consecutive failures and keep it open for the rest of a test.
func BreakerAggressiveTrip() sender.CircuitBreakerSettings {
	return sender.CircuitBreakerSettings{
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}
}

// NewTestGateway creates a gateway pointed at baseURL with rate limits and
// retries off and a breaker that never trips. opts are applied last.
func NewTestGateway(t *testing.T, baseURL string, opts ...sender.Option) *sender.Gateway {
	t.Helper()
	defaults := []sender.Option{
		sender.WithBaseURL(baseURL),
		sender.WithRetries(0),
		sender.WithRateLimit(0, 0),
		sender.WithPerChatRateLimit(0, 0),
		sender.WithCircuitBreakerSettings(BreakerNeverTrip()),
	}
	gw, err := sender.New(TestToken, append(defaults, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })
	return gw
}

// NewRetryTestGateway is NewTestGateway with network retries recorded by
// sleeper instead of waited for.
func NewRetryTestGateway(t *testing.T, baseURL string, sleeper *FakeSleeper, retries int, opts ...sender.Option) *sender.Gateway {
	t.Helper()
	defaults := []sender.Option{
		sender.WithRetries(retries),
		sender.WithRetryDelay(100 * time.Millisecond),
	}
	if sleeper != nil {
		defaults = append(defaults, sender.WithSleeper(sleeper))
	}
	return NewTestGateway(t, baseURL, append(defaults, opts...)...)
}

// NewBreakerTestGateway is NewTestGateway with BreakerAggressiveTrip.
func NewBreakerTestGateway(t *testing.T, baseURL string, opts ...sender.Option) *sender.Gateway {
	t.Helper()
	defaults := []sender.Option{
		sender.WithCircuitBreakerSettings(BreakerAggressiveTrip()),
	}
	return NewTestGateway(t, baseURL, append(defaults, opts...)...)
}
