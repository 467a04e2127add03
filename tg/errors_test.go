package tg_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/gramsea/tg"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code int
		kind tg.Kind
	}{
		{400, tg.KindBadRequest},
		{401, tg.KindUnauthorized},
		{403, tg.KindForbidden},
		{404, tg.KindNotFound},
		{409, tg.KindConflict},
		{429, tg.KindTooManyRequests},
		{500, tg.KindServerError},
		{502, tg.KindServerError},
		{599, tg.KindServerError},
		{999, tg.KindGeneric},
		{0, tg.KindGeneric},
		{418, tg.KindGeneric},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.kind, tg.Classify(tt.code))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *tg.APIError
		expected string
	}{
		{
			name:     "basic error",
			err:      tg.NewAPIError("sendMessage", 400, "Bad Request"),
			expected: "gramsea: sendMessage failed: Bad Request (code=400)",
		},
		{
			name: "error with retry_after",
			err: &tg.APIError{
				Code:        429,
				Description: "Too Many Requests",
				Method:      "sendMessage",
				RetryAfter:  30 * time.Second,
			},
			expected: "gramsea: sendMessage failed: Too Many Requests (code=429, retry_after=30s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAPIError_KindSentinels(t *testing.T) {
	tests := []struct {
		code     int
		sentinel error
	}{
		{400, tg.ErrBadRequest},
		{401, tg.ErrUnauthorized},
		{403, tg.ErrForbidden},
		{404, tg.ErrNotFound},
		{409, tg.ErrConflict},
		{429, tg.ErrTooManyRequests},
		{503, tg.ErrServerError},
		{302, tg.ErrAPI},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			err := error(tg.NewAPIError("getMe", tt.code, "x"))
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestAPIError_DescriptionSentinels(t *testing.T) {
	tests := []struct {
		desc     string
		sentinel error
	}{
		{"Forbidden: bot was blocked by the user", tg.ErrBotBlocked},
		{"Forbidden: bot was kicked from the group chat", tg.ErrBotKicked},
		{"Forbidden: user is deactivated", tg.ErrUserDeactivated},
		{"Bad Request: chat not found", tg.ErrChatNotFound},
		{"Bad Request: message to edit not found", tg.ErrMessageNotFound},
		{"Bad Request: message is not modified", tg.ErrMessageNotModified},
		{"Bad Request: not enough rights to send text messages", tg.ErrNoRights},
		{"Conflict: can't use getUpdates method while webhook is active", tg.ErrWebhookConflict},
		{"Conflict: terminated by other getUpdates request", tg.ErrGetUpdatesConflict},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			err := error(tg.NewAPIError("sendMessage", 403, tt.desc))
			assert.ErrorIs(t, err, tt.sentinel)
			assert.ErrorIs(t, err, tg.ErrForbidden)
		})
	}

	assert.Nil(t, tg.DetectSentinel("Bad Request: something else"))
}

func TestAPIError_Predicates(t *testing.T) {
	blocked := tg.NewAPIError("sendMessage", 403, "Forbidden: bot was blocked by the user")
	assert.True(t, blocked.IsBotBlocked())
	assert.False(t, blocked.IsBotKicked())

	rights := tg.NewAPIError("sendMessage", 403, "Forbidden: bot have no rights to send text messages")
	assert.True(t, rights.HasNoRightsToSend())

	notFound := tg.NewAPIError("deleteMessage", 400, "Bad Request: message to delete not found")
	assert.True(t, notFound.IsMessageNotFound())
	assert.False(t, notFound.IsChatNotFound())

	webhook := tg.NewAPIError("getUpdates", 409, "Conflict: can't use getUpdates method while webhook is active")
	assert.True(t, webhook.IsWebhookConflict())
	assert.False(t, webhook.IsGetUpdatesConflict())
}

func TestAPIError_IsRetryable(t *testing.T) {
	tests := []struct {
		code      int
		retryable bool
	}{
		{400, false},
		{401, false},
		{403, false},
		{404, false},
		{429, true},
		{500, true},
		{502, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.retryable, tg.NewAPIError("sendMessage", tt.code, "x").IsRetryable())
		})
	}
}

func TestAPIError_WaitTime(t *testing.T) {
	err := tg.NewAPIError("sendMessage", 429, "Too Many Requests")
	assert.Equal(t, tg.DefaultWaitTime, err.WaitTime())

	err.RetryAfter = 5 * time.Second
	assert.Equal(t, 5*time.Second, err.WaitTime())
}

func TestAPIError_As(t *testing.T) {
	wrapped := fmt.Errorf("send failed: %w", tg.NewAPIError("sendMessage", 403, "Forbidden"))

	var apiErr *tg.APIError
	require.ErrorAs(t, wrapped, &apiErr)
	assert.Equal(t, 403, apiErr.Code)
	assert.Equal(t, tg.KindForbidden, apiErr.Kind)
	assert.Equal(t, "forbidden", apiErr.Kind.String())
}

func TestValidationError(t *testing.T) {
	err := tg.NewValidationError("chat_id", "destination is required")
	assert.Equal(t, "gramsea: validation: chat_id - destination is required", err.Error())
	assert.ErrorIs(t, err, tg.ErrInvalidInput)
}

func TestConfigError(t *testing.T) {
	err := tg.NewConfigError("MASS_CONCURRENCY", "must be positive")
	assert.ErrorIs(t, err, tg.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "MASS_CONCURRENCY")
}

func TestClassifyNetwork(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind tg.NetworkKind
	}{
		{"deadline", context.DeadlineExceeded, tg.NetworkTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "example.invalid"}, tg.NetworkDNS},
		{"dns timeout", &net.DNSError{Err: "timeout", IsTimeout: true}, tg.NetworkTimeout},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, tg.NetworkConnection},
		{"other", errors.New("boom"), tg.NetworkOther},
		{"wrapped deadline", fmt.Errorf("do: %w", context.DeadlineExceeded), tg.NetworkTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tg.ClassifyNetwork(tt.err))
		})
	}
}

func TestNetworkError(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	err := tg.NewNetworkError("https://api.telegram.org/bot[REDACTED]/getMe", cause)

	assert.True(t, err.IsConnection())
	assert.False(t, err.Timeout())
	assert.ErrorIs(t, err, error(cause))
	assert.Contains(t, err.Error(), "network error (connection)")
}

func TestResponse_Err(t *testing.T) {
	t.Run("ok response has no error", func(t *testing.T) {
		resp := &tg.Response{OK: true}
		assert.NoError(t, resp.Err("getMe"))
	})

	t.Run("falls back to http status and default message", func(t *testing.T) {
		resp := &tg.Response{OK: false, HTTPStatus: 502, Synthetic: true, Raw: []byte("<html>")}
		err := resp.Err("getMe")

		var apiErr *tg.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 502, apiErr.Code)
		assert.Equal(t, "API error", apiErr.Description)
		assert.Equal(t, tg.KindServerError, apiErr.Kind)
		assert.Same(t, resp, apiErr.Response)
	})

	t.Run("zero code is generic", func(t *testing.T) {
		err := (&tg.Response{}).Err("getMe")
		assert.ErrorIs(t, err, tg.ErrAPI)
	})

	t.Run("retry after from parameters", func(t *testing.T) {
		resp := &tg.Response{
			ErrorCode:   429,
			Description: "Too Many Requests: retry after 7",
			Parameters:  &tg.ResponseParameters{RetryAfter: 7},
		}
		var apiErr *tg.APIError
		require.ErrorAs(t, resp.Err("sendMessage"), &apiErr)
		assert.Equal(t, 7*time.Second, apiErr.RetryAfter)
		assert.True(t, apiErr.IsRetryable())
	})

	t.Run("retry after from header", func(t *testing.T) {
		resp := &tg.Response{ErrorCode: 429, Header: http.Header{"Retry-After": []string{"3"}}}
		assert.Equal(t, 3*time.Second, resp.RetryAfter())
	})

	t.Run("migrate to chat id", func(t *testing.T) {
		resp := &tg.Response{
			ErrorCode:  400,
			Parameters: &tg.ResponseParameters{MigrateToChatID: -1001234},
		}
		var apiErr *tg.APIError
		require.ErrorAs(t, resp.Err("sendMessage"), &apiErr)
		assert.Equal(t, int64(-1001234), apiErr.MigrateToChatID)
	})
}

func TestResponse_Decode(t *testing.T) {
	resp := &tg.Response{OK: true, Result: []byte(`{"message_id":42,"date":1,"chat":{"id":7,"type":"private"}}`)}
	msg, err := resp.DecodeMessage()
	require.NoError(t, err)
	assert.Equal(t, 42, msg.MessageID)
	assert.Equal(t, int64(7), msg.ChatID())

	group := &tg.Response{OK: true, Result: []byte(`[{"message_id":1},{"message_id":2}]`)}
	msgs, err := group.DecodeMessages()
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	_, err = (&tg.Response{OK: true}).DecodeMessage()
	assert.Error(t, err)
}
