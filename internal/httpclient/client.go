// Package httpclient builds the pooled *http.Client shared by the gateway's
// API and download transports.
package httpclient

import (
	"cmp"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Config holds the dial, TLS and pool settings.
type Config struct {
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	TLSTimeout     time.Duration
	IdleTimeout    time.Duration
	KeepAlive      time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
}

// DefaultConfig returns defaults for the Bot API: 30s per request, 10s to connect.
// Mass sends hit a single host, so the per-host pool is kept wide.
func DefaultConfig() Config {
	return Config{
		RequestTimeout:      30 * time.Second,
		ConnectTimeout:      10 * time.Second,
		TLSTimeout:          10 * time.Second,
		IdleTimeout:         90 * time.Second,
		KeepAlive:           30 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 32,
		MaxConnsPerHost:     64,
	}
}

// New creates a client from cfg. Zero dial, TLS and pool settings take the
// DefaultConfig value; a zero RequestTimeout means no overall timeout.
func New(cfg Config) *http.Client {
	def := DefaultConfig()
	cfg.ConnectTimeout = cmp.Or(cfg.ConnectTimeout, def.ConnectTimeout)
	cfg.TLSTimeout = cmp.Or(cfg.TLSTimeout, def.TLSTimeout)
	cfg.KeepAlive = cmp.Or(cfg.KeepAlive, def.KeepAlive)
	cfg.MaxIdleConnsPerHost = cmp.Or(cfg.MaxIdleConnsPerHost, def.MaxIdleConnsPerHost)
	cfg.MaxConnsPerHost = cmp.Or(cfg.MaxConnsPerHost, def.MaxConnsPerHost)

	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: cfg.KeepAlive,
	}
	return &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			TLSHandshakeTimeout:   cfg.TLSTimeout,
			ResponseHeaderTimeout: cfg.RequestTimeout,
			ExpectContinueTimeout: time.Second,
			MaxIdleConns:          cfg.MaxIdleConns,
			MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
			MaxConnsPerHost:       cfg.MaxConnsPerHost,
			IdleConnTimeout:       cfg.IdleTimeout,
			ForceAttemptHTTP2:     true,
		},
	}
}

// NewDefault creates a client with DefaultConfig.
func NewDefault() *http.Client {
	return New(DefaultConfig())
}

// WithTimeout returns a shallow copy of client with another overall
// timeout. The copy shares the connection pool.
func WithTimeout(client *http.Client, timeout time.Duration) *http.Client {
	c := *client
	c.Timeout = timeout
	return &c
}

// CloseIdle closes idle connections held by client's transport.
func CloseIdle(client *http.Client) {
	if client != nil {
		client.CloseIdleConnections()
	}
}
