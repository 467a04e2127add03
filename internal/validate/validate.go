package validate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/prilive-com/gramsea/tg"
)

// New creates a validation error for field.
func New(field, message string) *tg.ValidationError {
	return tg.NewValidationError(field, message)
}

// Newf creates a validation error with a formatted message.
func Newf(field, format string, args ...any) *tg.ValidationError {
	return tg.NewValidationError(field, fmt.Sprintf(format, args...))
}

// Destination validates a chat identifier: a non-empty string (numeric id,
// @username) or a non-zero integer.
func Destination(chatID tg.ChatID) error {
	const msg = "destination is required"

	switch v := chatID.(type) {
	case nil:
		return New("chat_id", msg)
	case string:
		if strings.TrimSpace(v) == "" {
			return New("chat_id", msg)
		}
	case int:
		if v == 0 {
			return New("chat_id", msg)
		}
	case int64:
		if v == 0 {
			return New("chat_id", msg)
		}
	case int32:
		if v == 0 {
			return New("chat_id", msg)
		}
	case float64:
		// JSON and YAML decoding produce float64 for bare numbers.
		if v == 0 || v != float64(int64(v)) {
			return Newf("chat_id", "invalid numeric destination %v", v)
		}
	default:
		return Newf("chat_id", "invalid type %T, expected integer or string", chatID)
	}
	return nil
}

// Required validates that a string is not empty.
func Required(field, value, message string) error {
	if value == "" {
		return New(field, message)
	}
	return nil
}

// ParseMode validates a parse mode value.
func ParseMode(mode tg.ParseMode) error {
	if !mode.IsValid() {
		return Newf("parse_mode", "invalid value %q, expected HTML, Markdown, or MarkdownV2", mode)
	}
	return nil
}

// WebhookURL validates a webhook URL (must be HTTPS).
func WebhookURL(url string) error {
	if url == "" {
		return New("url", "cannot be empty")
	}
	if !strings.HasPrefix(url, "https://") {
		return New("url", "webhook URL must use HTTPS")
	}
	return nil
}

// OneOf validates that value is one of allowed.
func OneOf(field, value string, allowed ...string) error {
	if !slices.Contains(allowed, value) {
		return Newf(field, "invalid value %q, expected one of %s", value, strings.Join(allowed, ", "))
	}
	return nil
}

var commandRegex = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// Command validates a bot command name and its description.
func Command(name, description string) error {
	if !commandRegex.MatchString(name) {
		return Newf("command", "invalid name %q (1-32 lowercase letters, digits, underscores)", name)
	}
	if n := len([]rune(description)); n == 0 || n > tg.MaxCommandDescription {
		return Newf("description", "command %q needs a description of 1-%d characters", name, tg.MaxCommandDescription)
	}
	return nil
}
