package tg

import (
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// SecretToken holds a bot credential and never prints it.
// fmt, slog and text/JSON marshaling all see a placeholder.
type SecretToken string

// Value returns the raw token. Only the request URL builder should call it.
func (s SecretToken) Value() string { return string(s) }

func (s SecretToken) String() string { return redacted }

func (s SecretToken) GoString() string { return `tg.SecretToken("` + redacted + `")` }

// LogValue implements slog.LogValuer.
func (s SecretToken) LogValue() slog.Value { return slog.StringValue(redacted) }

// MarshalText implements encoding.TextMarshaler.
func (s SecretToken) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// IsEmpty reports an empty or whitespace-only token.
func (s SecretToken) IsEmpty() bool { return strings.TrimSpace(string(s)) == "" }
