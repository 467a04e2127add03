package receiver

import (
	"errors"
	"net/http"
)

// Sentinel errors
var (
	ErrAlreadyRunning = errors.New("gramsea/receiver: already running")

	// Webhook errors
	ErrUnauthorized     = errors.New("gramsea/receiver: unauthorized")
	ErrMethodNotAllowed = errors.New("gramsea/receiver: method not allowed")
	ErrBodyTooLarge     = errors.New("gramsea/receiver: request body too large")
	ErrBadPayload       = errors.New("gramsea/receiver: invalid update payload")
)

// StatusCode maps a DecodeWebhook error to the HTTP status to answer with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrBadPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
