// Package resilience provides the circuit breaker, the rate limiter and the
// fixed-delay retry loop used by the gateway and the transport.
// Uses sony/gobreaker for circuit breaking and golang.org/x/time/rate for rate limiting.
package resilience
