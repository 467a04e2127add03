package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig holds rate limiter configuration.
// A non-positive RPS disables that limit.
type RateLimiterConfig struct {
	GlobalRPS   float64 // Global requests per second
	GlobalBurst int     // Global burst size
	KeyRPS      float64 // Per-key requests per second
	KeyBurst    int     // Per-key burst size
	MaxKeys     int     // Per-key limiters kept before the least recent is evicted
	IdleTTL     time.Duration
}

// DefaultRateLimiterConfig returns the Bot API broadcast limits.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GlobalRPS:   30,
		GlobalBurst: 10,
		KeyRPS:      1,
		KeyBurst:    3,
		MaxKeys:     10000,
		IdleTTL:     10 * time.Minute,
	}
}

// Limit converts rps into a rate.Limit, treating rps <= 0 as unlimited.
func Limit(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

type keyEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // UnixNano
}

// RateLimiter provides global and per-key rate limiting.
type RateLimiter struct {
	cfg    RateLimiterConfig
	global *rate.Limiter

	mu     sync.RWMutex
	perKey map[string]*keyEntry

	stopOnce sync.Once
	stop     chan struct{}
}

// NewRateLimiter creates a limiter and starts its idle-key sweeper.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 10000
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	rl := &RateLimiter{
		cfg:    cfg,
		global: rate.NewLimiter(Limit(cfg.GlobalRPS), cfg.GlobalBurst),
		perKey: make(map[string]*keyEntry),
		stop:   make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Wait blocks until the per-key limit, then the global limit, allow a request.
// An empty key only waits for the global limit.
func (r *RateLimiter) Wait(ctx context.Context, key string) error {
	if key != "" {
		if err := r.limiter(key).Wait(ctx); err != nil {
			return err
		}
	}
	return r.global.Wait(ctx)
}

// Allow reports whether a request may proceed now, consuming tokens if so.
func (r *RateLimiter) Allow(key string) bool {
	if key != "" && !r.limiter(key).Allow() {
		return false
	}
	return r.global.Allow()
}

// SetGlobalLimit updates the global rate limit.
func (r *RateLimiter) SetGlobalLimit(rps float64, burst int) {
	r.global.SetLimit(Limit(rps))
	r.global.SetBurst(burst)
}

// SetKeyLimit updates the limit used for keys seen from now on.
func (r *RateLimiter) SetKeyLimit(rps float64, burst int) {
	r.mu.Lock()
	r.cfg.KeyRPS = rps
	r.cfg.KeyBurst = burst
	r.mu.Unlock()
}

// Keys returns the number of tracked per-key limiters.
func (r *RateLimiter) Keys() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.perKey)
}

// Close stops the sweeper. It is safe to call more than once.
func (r *RateLimiter) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *RateLimiter) limiter(key string) *rate.Limiter {
	now := time.Now().UnixNano()

	r.mu.RLock()
	e, ok := r.perKey[key]
	r.mu.RUnlock()
	if ok {
		e.lastUsed.Store(now)
		return e.limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok = r.perKey[key]; ok {
		e.lastUsed.Store(now)
		return e.limiter
	}

	if len(r.perKey) >= r.cfg.MaxKeys {
		r.evictOldestLocked()
	}

	e = &keyEntry{limiter: rate.NewLimiter(Limit(r.cfg.KeyRPS), r.cfg.KeyBurst)}
	e.lastUsed.Store(now)
	r.perKey[key] = e
	return e.limiter
}

func (r *RateLimiter) evictOldestLocked() {
	var (
		oldestKey  string
		oldestTime int64
	)
	for k, e := range r.perKey {
		if t := e.lastUsed.Load(); oldestKey == "" || t < oldestTime {
			oldestKey, oldestTime = k, t
		}
	}
	delete(r.perKey, oldestKey)
}

// Prune drops limiters idle for longer than the configured TTL.
func (r *RateLimiter) Prune(now time.Time) {
	threshold := now.Add(-r.cfg.IdleTTL).UnixNano()
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, e := range r.perKey {
		if e.lastUsed.Load() < threshold {
			delete(r.perKey, k)
		}
	}
}

func (r *RateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			r.Prune(now)
		case <-r.stop:
			return
		}
	}
}
