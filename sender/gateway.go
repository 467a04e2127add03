package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/sony/gobreaker/v2"

	"github.com/prilive-com/gramsea/internal/httpclient"
	"github.com/prilive-com/gramsea/internal/resilience"
	"github.com/prilive-com/gramsea/internal/transport"
	"github.com/prilive-com/gramsea/internal/validate"
	"github.com/prilive-com/gramsea/tg"
)

// Gateway maps Bot API method names to HTTP calls. It is safe for
// concurrent use.
type Gateway struct {
	config      Config
	endpoint    string // BaseURL/bot<token>/
	fileBase    string // BaseURL/file/bot<token>/
	httpClient  *http.Client
	ownsClient  bool
	transport   *transport.Transport
	downloads   *transport.Transport
	limiter     *resilience.RateLimiter
	breaker     *gobreaker.CircuitBreaker[*tg.Response]
	readyToTrip func(counts gobreaker.Counts) bool
	logger      *slog.Logger
	sleeper     Sleeper
	closeOnce   sync.Once
}

// New creates a Gateway for token. An empty or blank token fails with
// tg.ErrInvalidToken.
func New(token string, opts ...Option) (*Gateway, error) {
	cfg := DefaultConfig()
	cfg.Token = tg.SecretToken(token)
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig creates a Gateway from a Config. Options override the config.
func NewFromConfig(cfg Config, opts ...Option) (*Gateway, error) {
	if cfg.Token.IsEmpty() {
		return nil, tg.ErrInvalidToken
	}

	g := &Gateway{config: cfg}
	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.sleeper == nil {
		g.sleeper = resilience.RealSleeper{}
	}
	if g.httpClient == nil {
		g.httpClient = httpclient.New(httpclient.Config{
			RequestTimeout: g.config.RequestTimeout,
			ConnectTimeout: g.config.ConnectTimeout,
			KeepAlive:      g.config.KeepAlive,
			IdleTimeout:    g.config.IdleTimeout,
			MaxIdleConns:   g.config.MaxIdleConns,
		})
		g.ownsClient = true
	}

	base := strings.TrimRight(g.config.BaseURL, "/")
	g.endpoint = base + "/bot" + g.config.Token.Value() + "/"
	g.fileBase = base + "/file/bot" + g.config.Token.Value() + "/"

	g.transport = transport.New(g.httpClient,
		transport.WithToken(g.config.Token),
		transport.WithLogger(g.logger),
		transport.WithRetry(g.config.TransportRetries, g.config.TransportRetryDelay),
		transport.WithSleeper(g.sleeper),
	)
	// Downloads get twice the request timeout.
	downloadClient := g.httpClient
	if g.httpClient.Timeout > 0 {
		downloadClient = httpclient.WithTimeout(g.httpClient, 2*g.httpClient.Timeout)
	}
	g.downloads = transport.New(downloadClient,
		transport.WithToken(g.config.Token),
		transport.WithLogger(g.logger),
	)

	g.limiter = resilience.NewRateLimiter(resilience.RateLimiterConfig{
		GlobalRPS:   g.config.GlobalRPS,
		GlobalBurst: g.config.GlobalBurst,
		KeyRPS:      g.config.PerChatRPS,
		KeyBurst:    g.config.PerChatBurst,
		MaxKeys:     g.config.MaxChatLimiters,
	})

	breakerCfg := resilience.DefaultBreakerConfig("gramsea-gateway")
	breakerCfg.MaxRequests = g.config.BreakerMaxRequests
	breakerCfg.Interval = g.config.BreakerInterval
	breakerCfg.Timeout = g.config.BreakerTimeout
	breakerCfg.ReadyToTrip = g.readyToTrip
	breakerCfg.IsSuccessful = isBreakerSuccess
	breakerCfg.OnStateChange = func(name, from, to string) {
		g.logger.Info("circuit breaker state changed",
			"name", name,
			"from", from,
			"to", to,
		)
	}
	g.breaker = resilience.NewBreaker[*tg.Response](breakerCfg)

	return g, nil
}

// Close stops background work and releases idle connections of the
// default HTTP client. It is safe to call more than once.
func (g *Gateway) Close() error {
	g.closeOnce.Do(func() {
		g.limiter.Close()
		if g.ownsClient {
			httpclient.CloseIdle(g.httpClient)
		}
	})
	return nil
}

// Config returns the effective configuration.
func (g *Gateway) Config() Config { return g.config }

// Logger returns the gateway logger.
func (g *Gateway) Logger() *slog.Logger { return g.logger }

// ChatLimiterCount returns the number of active per-chat limiters.
func (g *Gateway) ChatLimiterCount() int { return g.limiter.Keys() }

// Invoke POSTs params to the Bot API method name. A response with ok=true is
// returned unchanged; any other outcome is an error: *tg.APIError for a
// response reporting failure, *tg.NetworkError when no response arrived,
// tg.ErrCircuitOpen while the breaker rejects calls.
func (g *Gateway) Invoke(ctx context.Context, method string, params map[string]any) (*tg.Response, error) {
	return g.invoke(ctx, method, params, http.MethodPost)
}

// InvokeGet is Invoke sending params as a GET query string.
func (g *Gateway) InvokeGet(ctx context.Context, method string, params map[string]any) (*tg.Response, error) {
	return g.invoke(ctx, method, params, http.MethodGet)
}

func (g *Gateway) invoke(ctx context.Context, method string, params map[string]any, httpMethod string) (*tg.Response, error) {
	if method == "" {
		return nil, validate.New("method", "method name is required")
	}
	if err := g.limiter.Wait(ctx, chatKey(params)); err != nil {
		return nil, err
	}

	resp, err := g.breaker.Execute(func() (*tg.Response, error) {
		resp, err := g.transport.Request(ctx, g.endpoint+method, params, httpMethod)
		if err != nil {
			return nil, err
		}
		return resp, resp.Err(method)
	})
	if err != nil {
		if resilience.IsRejected(err) {
			err = fmt.Errorf("%w: %w", tg.ErrCircuitOpen, err)
		}
		g.logger.Debug("invoke failed", "method", method, "error", err)
		return nil, err
	}
	return resp, nil
}

// GetIdentity calls getMe and returns the raw response.
func (g *Gateway) GetIdentity(ctx context.Context) (*tg.Response, error) {
	return g.Invoke(ctx, "getMe", nil)
}

// GetMe returns the bot user.
func (g *Gateway) GetMe(ctx context.Context) (*tg.User, error) {
	return Call[*tg.User](ctx, g, "getMe", nil)
}

// Call invokes method and decodes the result into T.
func Call[T any](ctx context.Context, g *Gateway, method string, params map[string]any) (T, error) {
	var result T
	resp, err := g.Invoke(ctx, method, params)
	if err != nil {
		return result, err
	}
	if err := resp.Decode(&result); err != nil {
		return result, fmt.Errorf("%s: %w", method, err)
	}
	return result, nil
}

// chatKey returns the per-chat limiter key for params, or "" when the call
// targets no chat.
func chatKey(params map[string]any) string {
	return chatIDString(params["chat_id"])
}

// isBreakerSuccess decides which outcomes count against the breaker.
// A 4xx answer still means the server is healthy.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *tg.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 400 && apiErr.Code < 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}
