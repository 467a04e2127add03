package gramsea

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prilive-com/gramsea/internal/syncutil"
	"github.com/prilive-com/gramsea/receiver"
	"github.com/prilive-com/gramsea/sender"
	"github.com/prilive-com/gramsea/tg"
)

// Bot is the unified Telegram bot client: one Gateway for sending and an
// optional long-polling loop for receiving.
type Bot struct {
	gw      *sender.Gateway
	logger  *slog.Logger
	config  botConfig
	updates chan tg.Update

	mu        sync.Mutex
	poller    *receiver.Poller
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	runErr    error
	closeOnce sync.Once
}

type botConfig struct {
	senderConfig  sender.Config
	senderOptions []sender.Option

	pollingConfig    receiver.Config
	updateBufferSize int

	logger *slog.Logger
}

// Option configures the Bot.
type Option func(*botConfig)

// WithConfig replaces the gateway configuration. The token passed to New
// still wins.
func WithConfig(cfg sender.Config) Option {
	return func(c *botConfig) {
		c.senderConfig = cfg
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *botConfig) {
		c.logger = logger
	}
}

// WithRetries sets the number of transport retries on network errors.
func WithRetries(n int) Option {
	return func(c *botConfig) {
		c.senderOptions = append(c.senderOptions, sender.WithRetries(n))
	}
}

// WithRateLimit sets the global rate limit.
func WithRateLimit(globalRPS float64, burst int) Option {
	return func(c *botConfig) {
		c.senderOptions = append(c.senderOptions, sender.WithRateLimit(globalRPS, burst))
	}
}

// WithBaseURL points the bot at another Bot API server.
func WithBaseURL(url string) Option {
	return func(c *botConfig) {
		c.senderOptions = append(c.senderOptions, sender.WithBaseURL(url))
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *botConfig) {
		c.senderOptions = append(c.senderOptions, sender.WithTimeout(d))
	}
}

// WithMassConcurrency sets the default concurrency of Mass senders.
func WithMassConcurrency(n int) Option {
	return func(c *botConfig) {
		c.senderOptions = append(c.senderOptions, sender.WithMassConcurrency(n))
	}
}

// WithGatewayOptions passes options straight to the Gateway.
func WithGatewayOptions(opts ...sender.Option) Option {
	return func(c *botConfig) {
		c.senderOptions = append(c.senderOptions, opts...)
	}
}

// WithPolling sets the long polling configuration used by Start.
func WithPolling(cfg receiver.Config) Option {
	return func(c *botConfig) {
		c.pollingConfig = cfg
	}
}

// WithAllowedUpdates filters update types.
func WithAllowedUpdates(types ...string) Option {
	return func(c *botConfig) {
		c.pollingConfig.AllowedUpdates = types
	}
}

// WithDeleteWebhook deletes an existing webhook before polling.
func WithDeleteWebhook(enabled bool) Option {
	return func(c *botConfig) {
		c.pollingConfig.DeleteWebhookFirst = enabled
	}
}

// WithUpdateBufferSize sets the updates channel buffer size.
func WithUpdateBufferSize(size int) Option {
	return func(c *botConfig) {
		c.updateBufferSize = max(size, 0)
	}
}

// New creates a Bot for token.
func New(token string, opts ...Option) (*Bot, error) {
	cfg := botConfig{
		senderConfig:     sender.DefaultConfig(),
		pollingConfig:    receiver.DefaultConfig(),
		updateBufferSize: 100,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if token != "" {
		cfg.senderConfig.Token = tg.SecretToken(token)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	gw, err := sender.NewFromConfig(cfg.senderConfig,
		append([]sender.Option{sender.WithLogger(logger)}, cfg.senderOptions...)...)
	if err != nil {
		return nil, err
	}

	return &Bot{
		gw:      gw,
		logger:  logger,
		config:  cfg,
		updates: make(chan tg.Update, cfg.updateBufferSize),
	}, nil
}

// NewFromEnv creates a Bot from the TELEGRAM_*, transport and POLLING_*
// environment variables. Options are applied after the environment.
func NewFromEnv(opts ...Option) (*Bot, error) {
	senderCfg, err := sender.LoadConfig()
	if err != nil {
		return nil, err
	}
	pollingCfg, err := receiver.LoadConfig()
	if err != nil {
		return nil, err
	}
	base := []Option{WithConfig(*senderCfg), WithPolling(*pollingCfg)}
	return New("", append(base, opts...)...)
}

// Start begins long polling in the background. Updates arrive on Updates;
// the channel is closed when polling ends. A Bot polls at most once.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.poller != nil {
		return receiver.ErrAlreadyRunning
	}
	poller, err := receiver.NewPoller(b.gw, b.config.pollingConfig, receiver.WithPollerLogger(b.logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	b.poller = poller
	b.cancel = cancel
	syncutil.Go(&b.wg, func() {
		defer close(b.updates)
		err := poller.Run(ctx, b.updates)
		b.mu.Lock()
		b.runErr = err
		b.mu.Unlock()
	})
	return nil
}

// Stop ends polling and waits for the loop to exit.
func (b *Bot) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	b.wg.Wait()
}

// Err returns the error that ended polling, if any.
func (b *Bot) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runErr
}

// Close stops polling and releases the gateway. Safe to call repeatedly.
func (b *Bot) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.Stop()
		err = b.gw.Close()
	})
	return err
}

// Updates returns the updates channel.
func (b *Bot) Updates() <-chan tg.Update {
	return b.updates
}

// IsHealthy reports whether the bot is ready for probes.
func (b *Bot) IsHealthy() bool {
	b.mu.Lock()
	poller := b.poller
	b.mu.Unlock()
	if poller == nil {
		return true
	}
	return poller.IsHealthy()
}

// Gateway returns the underlying gateway for advanced usage.
func (b *Bot) Gateway() *sender.Gateway {
	return b.gw
}

// Message starts a message that picks its send strategy from its content.
func (b *Bot) Message() *sender.Message { return b.gw.Message() }

// Text starts a text message.
func (b *Bot) Text() *sender.Text { return b.gw.Text() }

// Media starts a single-media message.
func (b *Bot) Media() *sender.Media { return b.gw.Media() }

// MediaGroup starts an album.
func (b *Bot) MediaGroup() *sender.MediaGroup { return b.gw.MediaGroup() }

// Mass starts a mass send.
func (b *Bot) Mass() *sender.MassSender { return b.gw.Mass() }

// Invoke calls any Bot API method.
func (b *Bot) Invoke(ctx context.Context, method string, params map[string]any) (*tg.Response, error) {
	return b.gw.Invoke(ctx, method, params)
}

// GetMe returns the bot user.
func (b *Bot) GetMe(ctx context.Context) (*tg.User, error) {
	return b.gw.GetMe(ctx)
}
