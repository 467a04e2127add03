// Package scrub removes bot tokens from strings and errors.
package scrub

import (
	"strings"

	"github.com/prilive-com/gramsea/tg"
)

const placeholder = "[REDACTED]"

// Token replaces every occurrence of the token in s.
func Token(s string, token tg.SecretToken) string {
	if v := token.Value(); v != "" {
		return strings.ReplaceAll(s, v, placeholder)
	}
	return s
}

// TokenFromError removes the bot token from error messages.
// http.Client.Do includes the request URL, and with it the token, in its errors.
// The chain is kept for errors.Is/As via Unwrap.
func TokenFromError(err error, token tg.SecretToken) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if scrubbed := Token(msg, token); scrubbed != msg {
		return &scrubbedError{msg: scrubbed, err: err}
	}
	return err
}

type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.err }
