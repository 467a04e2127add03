package receiver

import (
	"crypto/subtle"
	"fmt"
	"io"
	"net/http"

	"github.com/prilive-com/gramsea/tg"
)

// SecretHeader carries the secret_token given to setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// DefaultMaxBodySize bounds a webhook body when maxBody is not positive.
const DefaultMaxBodySize = 1 << 20

// DecodeWebhook validates a webhook request and parses its update.
// An empty secret skips the header check.
func DecodeWebhook(r *http.Request, secret string, maxBody int64) (*tg.Update, error) {
	if r.Method != http.MethodPost {
		return nil, ErrMethodNotAllowed
	}
	if secret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return nil, ErrUnauthorized
		}
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read webhook body: %w", err)
	}
	if int64(len(body)) > maxBody {
		return nil, ErrBodyTooLarge
	}

	update, err := tg.ParseUpdate(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return update, nil
}
