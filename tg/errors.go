package tg

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Sentinel errors - use with errors.Is()
var (
	// API error kinds
	ErrBadRequest      = errors.New("gramsea: bad request")
	ErrUnauthorized    = errors.New("gramsea: unauthorized (invalid token)")
	ErrForbidden       = errors.New("gramsea: forbidden")
	ErrNotFound        = errors.New("gramsea: not found")
	ErrConflict        = errors.New("gramsea: conflict")
	ErrTooManyRequests = errors.New("gramsea: too many requests")
	ErrServerError     = errors.New("gramsea: telegram server error")
	ErrAPI             = errors.New("gramsea: api error")

	// Message errors
	ErrMessageNotFound    = errors.New("gramsea: message not found")
	ErrMessageNotModified = errors.New("gramsea: message not modified")

	// Chat/User errors
	ErrBotBlocked      = errors.New("gramsea: bot blocked by user")
	ErrBotKicked       = errors.New("gramsea: bot kicked from chat")
	ErrChatNotFound    = errors.New("gramsea: chat not found")
	ErrUserDeactivated = errors.New("gramsea: user deactivated")
	ErrNoRights        = errors.New("gramsea: not enough rights")

	// Update delivery errors
	ErrWebhookConflict    = errors.New("gramsea: webhook is active")
	ErrGetUpdatesConflict = errors.New("gramsea: terminated by other getUpdates request")

	// Client errors
	ErrInvalidInput     = errors.New("gramsea: invalid input")
	ErrCircuitOpen      = errors.New("gramsea: circuit breaker open")
	ErrResponseTooLarge = errors.New("gramsea: response too large")
	ErrInvalidToken     = errors.New("gramsea: bot token is required")
	ErrInvalidConfig    = errors.New("gramsea: invalid configuration")
)

// DefaultWaitTime is used when a 429 response carries no retry_after.
const DefaultWaitTime = 30 * time.Second

// Kind classifies an API failure by its numeric code.
type Kind int

const (
	KindGeneric Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
	KindServerError
)

var kindNames = [...]string{
	KindGeneric:         "api_error",
	KindBadRequest:      "bad_request",
	KindUnauthorized:    "unauthorized",
	KindForbidden:       "forbidden",
	KindNotFound:        "not_found",
	KindConflict:        "conflict",
	KindTooManyRequests: "too_many_requests",
	KindServerError:     "server_error",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Sentinel returns the sentinel error matching the kind.
func (k Kind) Sentinel() error {
	switch k {
	case KindBadRequest:
		return ErrBadRequest
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindTooManyRequests:
		return ErrTooManyRequests
	case KindServerError:
		return ErrServerError
	default:
		return ErrAPI
	}
}

// Classify maps a numeric error code to its Kind.
func Classify(code int) Kind {
	switch {
	case code == 400:
		return KindBadRequest
	case code == 401:
		return KindUnauthorized
	case code == 403:
		return KindForbidden
	case code == 404:
		return KindNotFound
	case code == 409:
		return KindConflict
	case code == 429:
		return KindTooManyRequests
	case code >= 500 && code < 600:
		return KindServerError
	default:
		return KindGeneric
	}
}

// APIError represents an unsuccessful Bot API response.
// Use errors.As() to extract details, errors.Is() to match sentinels.
type APIError struct {
	Kind            Kind
	Code            int
	Description     string
	Method          string
	RetryAfter      time.Duration
	MigrateToChatID int64
	Response        *Response // raw payload as returned by the transport
	cause           error
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("gramsea: %s failed: %s (code=%d, retry_after=%s)",
			e.Method, e.Description, e.Code, e.RetryAfter)
	}
	return fmt.Sprintf("gramsea: %s failed: %s (code=%d)", e.Method, e.Description, e.Code)
}

// Unwrap exposes the kind sentinel and, when the description is recognized,
// a more specific sentinel such as ErrBotBlocked.
func (e *APIError) Unwrap() []error {
	errs := []error{e.Kind.Sentinel()}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// IsRetryable reports whether a delayed retry may succeed.
func (e *APIError) IsRetryable() bool {
	return e.RetryAfter > 0 || e.Kind == KindTooManyRequests || e.Kind == KindServerError
}

// WaitTime returns how long to wait before retrying a rate-limited call.
func (e *APIError) WaitTime() time.Duration {
	if e.RetryAfter > 0 {
		return e.RetryAfter
	}
	return DefaultWaitTime
}

// IsBotBlocked reports a 403 caused by the user blocking the bot.
func (e *APIError) IsBotBlocked() bool { return e.descContains("bot was blocked by the user") }

// IsBotKicked reports a 403 caused by the bot being removed from the chat.
func (e *APIError) IsBotKicked() bool { return e.descContains("bot was kicked") }

// IsUserDeactivated reports a 403 for a deleted account.
func (e *APIError) IsUserDeactivated() bool { return e.descContains("user is deactivated") }

// HasNoRightsToSend reports a 403 for missing send permissions.
func (e *APIError) HasNoRightsToSend() bool {
	return e.descContains("not enough rights") || e.descContains("have no rights to send")
}

// IsChatNotFound reports an unknown chat.
func (e *APIError) IsChatNotFound() bool { return e.descContains("chat not found") }

// IsMessageNotFound reports an unknown message.
func (e *APIError) IsMessageNotFound() bool { return errors.Is(DetectSentinel(e.Description), ErrMessageNotFound) }

// IsWebhookConflict reports getUpdates being called while a webhook is set.
func (e *APIError) IsWebhookConflict() bool { return e.descContains("webhook is active") }

// IsGetUpdatesConflict reports two concurrent getUpdates consumers.
func (e *APIError) IsGetUpdatesConflict() bool { return e.descContains("terminated by other getupdates") }

func (e *APIError) descContains(s string) bool {
	return strings.Contains(strings.ToLower(e.Description), s)
}

// NewAPIError creates an APIError classified by code with description-based sentinel detection.
func NewAPIError(method string, code int, description string) *APIError {
	return &APIError{
		Kind:        Classify(code),
		Code:        code,
		Description: description,
		Method:      method,
		cause:       DetectSentinel(description),
	}
}

// DetectSentinel maps well-known descriptions to specific sentinel errors.
// Returns nil when the description carries no extra information.
func DetectSentinel(desc string) error {
	d := strings.ToLower(desc)
	switch {
	case strings.Contains(d, "message is not modified"):
		return ErrMessageNotModified
	case strings.Contains(d, "message to edit not found"),
		strings.Contains(d, "message to delete not found"),
		strings.Contains(d, "message not found"):
		return ErrMessageNotFound
	case strings.Contains(d, "bot was blocked"):
		return ErrBotBlocked
	case strings.Contains(d, "bot was kicked"):
		return ErrBotKicked
	case strings.Contains(d, "chat not found"):
		return ErrChatNotFound
	case strings.Contains(d, "user is deactivated"):
		return ErrUserDeactivated
	case strings.Contains(d, "not enough rights"):
		return ErrNoRights
	case strings.Contains(d, "webhook is active"):
		return ErrWebhookConflict
	case strings.Contains(d, "terminated by other getupdates"):
		return ErrGetUpdatesConflict
	}
	return nil
}

// ValidationError represents a caller-side precondition violation.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gramsea: validation: %s - %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gramsea: config: %s - %s", e.Key, e.Message)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// NewConfigError creates a new ConfigError.
func NewConfigError(key, message string) *ConfigError {
	return &ConfigError{Key: key, Message: message}
}

// NetworkKind describes why an HTTP exchange could not complete.
type NetworkKind int

const (
	NetworkOther NetworkKind = iota
	NetworkTimeout
	NetworkDNS
	NetworkTLS
	NetworkConnection
)

func (k NetworkKind) String() string {
	switch k {
	case NetworkTimeout:
		return "timeout"
	case NetworkDNS:
		return "dns"
	case NetworkTLS:
		return "tls"
	case NetworkConnection:
		return "connection"
	default:
		return "other"
	}
}

// NetworkError is returned when no HTTP response could be obtained.
type NetworkError struct {
	Kind NetworkKind
	URL  string // redacted
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gramsea: network error (%s): %v", e.Kind, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the exchange timed out.
func (e *NetworkError) Timeout() bool { return e.Kind == NetworkTimeout }

// IsConnection reports refused, reset or unreachable connections.
func (e *NetworkError) IsConnection() bool { return e.Kind == NetworkConnection }

// IsDNS reports a name resolution failure.
func (e *NetworkError) IsDNS() bool { return e.Kind == NetworkDNS }

// IsTLS reports a handshake or certificate failure.
func (e *NetworkError) IsTLS() bool { return e.Kind == NetworkTLS }

// NewNetworkError wraps err and classifies it.
func NewNetworkError(url string, err error) *NetworkError {
	return &NetworkError{Kind: ClassifyNetwork(err), URL: url, Err: err}
}

// ClassifyNetwork inspects a transport error chain.
func ClassifyNetwork(err error) NetworkKind {
	if err == nil {
		return NetworkOther
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NetworkTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return NetworkTimeout
		}
		return NetworkDNS
	}

	var (
		recordErr  tls.RecordHeaderError
		certErr    *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	if errors.As(err, &recordErr) || errors.As(err, &certErr) || errors.As(err, &unknownCA) ||
		errors.As(err, &hostErr) || errors.As(err, &invalidErr) {
		return NetworkTLS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NetworkTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NetworkConnection
	}
	return NetworkOther
}
