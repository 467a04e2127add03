package receiver

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/prilive-com/gramsea/internal/resilience"
	"github.com/prilive-com/gramsea/sender"
	"github.com/prilive-com/gramsea/tg"
)

// Poller long-polls getUpdates through a Gateway.
type Poller struct {
	gw      *sender.Gateway
	cfg     Config
	logger  *slog.Logger
	sleeper sender.Sleeper

	running           atomic.Bool
	offset            atomic.Int64
	consecutiveErrors atomic.Int32
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithPollerLogger sets the logger. Defaults to the gateway's logger.
func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPollerSleeper replaces the wall-clock wait between failed polls.
func WithPollerSleeper(s sender.Sleeper) PollerOption {
	return func(p *Poller) {
		if s != nil {
			p.sleeper = s
		}
	}
}

// WithOffset sets the first update id to request.
func WithOffset(offset int64) PollerOption {
	return func(p *Poller) {
		p.offset.Store(offset)
	}
}

// NewPoller creates a Poller. The long-poll timeout must stay below the
// gateway's request timeout or every idle poll would fail client-side.
func NewPoller(gw *sender.Gateway, cfg Config, opts ...PollerOption) (*Poller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rt := gw.Config().RequestTimeout; rt > 0 && cfg.Timeout >= rt {
		return nil, tg.NewConfigError("POLLING_TIMEOUT", "must be below the request timeout "+rt.String())
	}

	p := &Poller{
		gw:      gw,
		cfg:     cfg,
		logger:  gw.Logger(),
		sleeper: resilience.RealSleeper{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run polls until ctx is done, a conflict is reported, or MaxErrors
// consecutive polls fail. Updates are sent to the channel in order.
func (p *Poller) Run(ctx context.Context, updates chan<- tg.Update) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.running.Store(false)

	if p.cfg.DeleteWebhookFirst {
		p.logger.Info("deleting existing webhook")
		if err := p.gw.DeleteWebhook(ctx, false); err != nil {
			return fmt.Errorf("delete webhook: %w", err)
		}
	}

	p.logger.Info("long polling started",
		"timeout", p.cfg.Timeout,
		"limit", p.cfg.Limit,
		"max_errors", p.cfg.MaxErrors,
	)

	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("long polling stopped")
			return err
		}

		batch, err := p.fetch(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				p.logger.Info("long polling stopped")
				return ctxErr
			}
			if errors.Is(err, tg.ErrConflict) {
				p.logger.Error("getUpdates conflict", "error", err)
				return err
			}

			n := p.consecutiveErrors.Add(1)
			delay := p.backoff(n)
			p.logger.Error("fetch updates failed",
				"error", err,
				"consecutive_errors", n,
				"retry_delay", delay,
			)
			if p.cfg.MaxErrors > 0 && int(n) >= p.cfg.MaxErrors {
				return fmt.Errorf("gramsea/receiver: %d consecutive poll failures: %w", n, err)
			}
			if err := p.sleeper.Sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}

		p.consecutiveErrors.Store(0)

		// The offset moves only once the consumer has the update.
		for _, update := range batch {
			select {
			case updates <- update:
				if next := int64(update.UpdateID) + 1; next > p.offset.Load() {
					p.offset.Store(next)
				}
				p.logger.Debug("update delivered", "update_id", update.UpdateID, "type", update.Type())
			case <-ctx.Done():
				p.logger.Info("stopping update delivery: context cancelled")
				return ctx.Err()
			}
		}
	}
}

// Running reports whether Run is active.
func (p *Poller) Running() bool {
	return p.running.Load()
}

// IsHealthy reports a running poller below its error budget.
func (p *Poller) IsHealthy() bool {
	if p.cfg.MaxErrors == 0 {
		return p.running.Load()
	}
	return p.running.Load() && int(p.consecutiveErrors.Load()) < p.cfg.MaxErrors
}

// ConsecutiveErrors returns the current error count.
func (p *Poller) ConsecutiveErrors() int32 {
	return p.consecutiveErrors.Load()
}

// Offset returns the next update id to request.
func (p *Poller) Offset() int64 {
	return p.offset.Load()
}

func (p *Poller) fetch(ctx context.Context) ([]tg.Update, error) {
	params := map[string]any{
		"offset":  p.offset.Load(),
		"limit":   p.cfg.Limit,
		"timeout": int(p.cfg.Timeout / time.Second),
	}
	if len(p.cfg.AllowedUpdates) > 0 {
		params["allowed_updates"] = p.cfg.AllowedUpdates
	}
	return sender.Call[[]tg.Update](ctx, p.gw, "getUpdates", params)
}

func (p *Poller) backoff(attempt int32) time.Duration {
	delay := float64(p.cfg.RetryInitialDelay) * math.Pow(p.cfg.RetryBackoffFactor, float64(attempt-1))
	if maxDelay := float64(p.cfg.RetryMaxDelay); maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}

	// 0-25% jitter
	if jitterRange := int64(delay * 0.25); jitterRange > 0 {
		if j, err := rand.Int(rand.Reader, big.NewInt(jitterRange)); err == nil {
			delay += float64(j.Int64())
		}
	}
	return time.Duration(delay)
}
