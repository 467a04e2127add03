package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prilive-com/gramsea/internal/resilience"
	"github.com/prilive-com/gramsea/internal/scrub"
	"github.com/prilive-com/gramsea/tg"
)

const (
	// DefaultRetryDelay is the wait between network retries.
	DefaultRetryDelay = 500 * time.Millisecond

	maxResponseSize = 10 << 20 // 10MB
)

// Transport sends Bot API requests over an *http.Client.
type Transport struct {
	client     *http.Client
	token      tg.SecretToken
	logger     *slog.Logger
	retries    int
	retryDelay time.Duration
	sleeper    resilience.Sleeper
}

// Option configures the Transport.
type Option func(*Transport)

// WithToken sets the token scrubbed from errors and logged URLs.
func WithToken(token tg.SecretToken) Option {
	return func(t *Transport) { t.token = token }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) { t.logger = logger }
}

// WithRetry sets the number of extra attempts after a network failure and the
// fixed delay between them.
func WithRetry(retries int, delay time.Duration) Option {
	return func(t *Transport) {
		t.retries = max(retries, 0)
		t.retryDelay = delay
	}
}

// WithSleeper sets the sleeper used between retries (useful for testing).
func WithSleeper(s resilience.Sleeper) Option {
	return func(t *Transport) { t.sleeper = s }
}

// New creates a Transport. A nil client uses http.DefaultClient.
func New(client *http.Client, opts ...Option) *Transport {
	t := &Transport{
		client:     client,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.sleeper == nil {
		t.sleeper = resilience.RealSleeper{}
	}
	return t
}

// Client returns the underlying HTTP client.
func (t *Transport) Client() *http.Client { return t.client }

// Request sends params to rawURL with the given HTTP method ("GET" or "POST").
// It returns the decoded response whatever its HTTP status, or a
// *tg.NetworkError when no response could be read.
func (t *Transport) Request(ctx context.Context, rawURL string, params map[string]any, method string) (*tg.Response, error) {
	policy := resilience.RetryPolicy{
		Retries:     t.retries,
		Delay:       t.retryDelay,
		Sleeper:     t.sleeper,
		ShouldRetry: IsNetworkError,
		OnRetry: func(attempt int, err error) {
			t.logger.Debug("retrying request after network error",
				"url", t.redact(rawURL),
				"attempt", attempt,
				"delay", t.retryDelay,
				"error", err,
			)
		},
	}
	return resilience.Retry(ctx, policy, func(ctx context.Context) (*tg.Response, error) {
		return t.do(ctx, rawURL, params, method)
	})
}

// IsNetworkError reports whether err is a *tg.NetworkError.
func IsNetworkError(err error) bool {
	var netErr *tg.NetworkError
	return errors.As(err, &netErr)
}

func (t *Transport) do(ctx context.Context, rawURL string, params map[string]any, method string) (*tg.Response, error) {
	req, err := t.newRequest(ctx, rawURL, params, method)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, t.networkError(rawURL, err)
	}
	defer resp.Body.Close()

	// Read one byte past the limit to detect overflow.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, t.networkError(rawURL, err)
	}
	if int64(len(body)) > maxResponseSize {
		return nil, tg.ErrResponseTooLarge
	}

	return Decode(body, resp.StatusCode, resp.Header), nil
}

func (t *Transport) newRequest(ctx context.Context, rawURL string, params map[string]any, method string) (*http.Request, error) {
	if strings.EqualFold(method, http.MethodGet) {
		target := rawURL
		if len(params) > 0 {
			q, err := EncodeQuery(params)
			if err != nil {
				return nil, fmt.Errorf("gramsea: encode query: %w", err)
			}
			target += "?" + q
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}

	if HasLocalFile(params) {
		pr, pw := io.Pipe()
		encoder := newMultipartEncoder(pw)
		contentType := encoder.ContentType()

		go func() {
			if err := encoder.Encode(params); err != nil {
				pw.CloseWithError(fmt.Errorf("encode multipart request: %w", err))
				return
			}
			if err := encoder.Close(); err != nil {
				pw.CloseWithError(fmt.Errorf("close multipart encoder: %w", err))
				return
			}
			pw.Close()
		}()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, pr)
		if err != nil {
			pr.Close()
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}

	if params == nil {
		params = map[string]any{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("gramsea: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// EncodeQuery renders params as a URL query string, JSON-encoding complex values.
func EncodeQuery(params map[string]any) (string, error) {
	values := make(url.Values, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		s, err := FormValue(v)
		if err != nil {
			return "", fmt.Errorf("%s: %w", k, err)
		}
		values.Set(k, s)
	}
	return values.Encode(), nil
}

// Decode builds a Response from a body. A body that is not a JSON object
// yields a synthetic failure carrying the raw bytes and the HTTP status.
func Decode(body []byte, status int, header http.Header) *tg.Response {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var r tg.Response
		if err := json.Unmarshal(trimmed, &r); err == nil {
			r.HTTPStatus = status
			r.Header = header
			r.Raw = body
			return &r
		}
	}
	return &tg.Response{
		OK:         false,
		HTTPStatus: status,
		Header:     header,
		Raw:        body,
		Synthetic:  true,
	}
}

// Download streams the body of a GET request to w.
// Non-2xx statuses are reported as *tg.APIError.
func (t *Transport) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, t.networkError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, tg.NewAPIError("downloadFile", resp.StatusCode, resp.Status)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, t.networkError(rawURL, err)
	}
	return n, nil
}

func (t *Transport) networkError(rawURL string, err error) *tg.NetworkError {
	return tg.NewNetworkError(t.redact(rawURL), scrub.TokenFromError(err, t.token))
}

func (t *Transport) redact(s string) string {
	return scrub.Token(s, t.token)
}
