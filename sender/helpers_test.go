package sender_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/gramsea/internal/testutil"
	"github.com/prilive-com/gramsea/sender"
	"github.com/prilive-com/gramsea/tg"
)

func TestSetWebhook(t *testing.T) {
	server, gw := newGateway(t)

	err := gw.SetWebhook(context.Background(), "https://example.com/hook", sender.WebhookOptions{
		SecretToken:        "s3cret",
		MaxConnections:     40,
		AllowedUpdates:     []string{"message"},
		DropPendingUpdates: true,
	})

	require.NoError(t, err)
	cap := server.LastCapture()
	cap.AssertAPIMethod(t, "setWebhook")
	cap.AssertJSONField(t, "url", "https://example.com/hook")
	cap.AssertJSONField(t, "secret_token", "s3cret")
	cap.AssertJSONField(t, "max_connections", float64(40))
	cap.AssertJSONField(t, "drop_pending_updates", true)
	cap.AssertJSONFieldNested(t, "allowed_updates.0", "message")
	cap.AssertJSONFieldAbsent(t, "ip_address")
}

func TestSetWebhook_RejectsPlainHTTP(t *testing.T) {
	server, gw := newGateway(t)

	err := gw.SetWebhook(context.Background(), "http://example.com/hook", sender.WebhookOptions{})

	assert.ErrorIs(t, err, tg.ErrInvalidInput)
	assert.Equal(t, 0, server.CaptureCount())
}

func TestDeleteWebhook(t *testing.T) {
	server, gw := newGateway(t)

	require.NoError(t, gw.DeleteWebhook(context.Background(), false))

	cap := server.LastCapture()
	cap.AssertAPIMethod(t, "deleteWebhook")
	cap.AssertJSONField(t, "drop_pending_updates", false)
}

func TestGetWebhookInfo(t *testing.T) {
	server, gw := newGateway(t)
	server.On("getWebhookInfo", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyWebhookInfo(w, "https://example.com/hook", 3)
	})

	info, err := gw.GetWebhookInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hook", info.URL)
	assert.Equal(t, 3, info.PendingUpdateCount)
	server.LastCapture().AssertMethod(t, http.MethodGet)
}

func TestChatMemberPredicates(t *testing.T) {
	tests := []struct {
		status  string
		member  bool
		admin   bool
		creator bool
	}{
		{"creator", true, true, true},
		{"administrator", true, true, false},
		{"member", true, false, false},
		{"restricted", true, false, false},
		{"left", false, false, false},
		{"kicked", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			server, gw := newGateway(t)
			server.On("getChatMember", func(w http.ResponseWriter, r *http.Request) {
				testutil.ReplyChatMember(w, tt.status)
			})
			ctx := context.Background()

			status, err := gw.ChatMemberStatus(ctx, testutil.TestChatID, testutil.TestUserID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)

			member, err := gw.IsChatMember(ctx, testutil.TestChatID, testutil.TestUserID)
			require.NoError(t, err)
			assert.Equal(t, tt.member, member)

			admin, err := gw.IsChatAdmin(ctx, testutil.TestChatID, testutil.TestUserID)
			require.NoError(t, err)
			assert.Equal(t, tt.admin, admin)

			creator, err := gw.IsChatCreator(ctx, testutil.TestChatID, testutil.TestUserID)
			require.NoError(t, err)
			assert.Equal(t, tt.creator, creator)

			server.LastCapture().AssertJSONField(t, "user_id", float64(testutil.TestUserID))
		})
	}
}

func TestIsChatMember_PropagatesErrors(t *testing.T) {
	server, gw := newGateway(t)
	server.On("getChatMember", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyBadRequest(w, "Bad Request: chat not found")
	})

	ok, err := gw.IsChatMember(context.Background(), 1, 2)

	assert.False(t, ok)
	assert.ErrorIs(t, err, tg.ErrChatNotFound)
}

func TestSendChatAction(t *testing.T) {
	server, gw := newGateway(t)

	require.NoError(t, gw.SendTyping(context.Background(), 1))
	server.LastCapture().AssertJSONField(t, "action", "typing")

	require.NoError(t, gw.SendChatAction(context.Background(), 1, sender.ActionUploadDocument))
	server.LastCapture().AssertJSONField(t, "action", "upload_document")

	err := gw.SendChatAction(context.Background(), 1, "dancing")
	assert.ErrorIs(t, err, tg.ErrInvalidInput)
	assert.Equal(t, 2, server.CaptureCount())
}

func TestGetFileURL(t *testing.T) {
	server, gw := newGateway(t)
	server.On("getFile", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyFile(w, "F1", "photos/file_1.jpg", 4)
	})

	url, err := gw.GetFileURL(context.Background(), "F1")

	require.NoError(t, err)
	assert.Equal(t, server.BaseURL()+"/file/bot"+testutil.TestToken+"/photos/file_1.jpg", url)
	server.LastCapture().AssertJSONField(t, "file_id", "F1")
}

func TestGetFileURL_NoPath(t *testing.T) {
	server, gw := newGateway(t)
	server.On("getFile", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyFile(w, "F1", "", 0)
	})

	_, err := gw.GetFileURL(context.Background(), "F1")

	assert.ErrorIs(t, err, sender.ErrNoFilePath)
}

func TestDownloadFile(t *testing.T) {
	server, gw := newGateway(t)
	server.On("getFile", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyFile(w, "F1", "docs/a.txt", 5)
	})
	server.OnFile("docs/a.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})

	var buf bytes.Buffer
	n, err := gw.DownloadFile(context.Background(), "F1", &buf)

	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", buf.String())
}

func TestDownloadFile_Missing(t *testing.T) {
	server, gw := newGateway(t)
	server.On("getFile", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyFile(w, "F1", "gone.bin", 1)
	})

	_, err := gw.DownloadFile(context.Background(), "F1", &bytes.Buffer{})

	require.ErrorIs(t, err, tg.ErrNotFound)
	assert.NotContains(t, err.Error(), testutil.TestToken)
}

func TestCommands(t *testing.T) {
	server, gw := newGateway(t)
	server.On("getMyCommands", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyCommands(w, "start", "Start the bot", "help", "Show help")
	})
	ctx := context.Background()
	scope := sender.CommandOptions{
		Scope:        &sender.CommandScope{Type: "chat", ChatID: int64(5)},
		LanguageCode: "en",
	}

	err := gw.SetCommands(ctx, []tg.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "help", Description: "Show help"},
	}, scope)
	require.NoError(t, err)
	set := server.LastCapture()
	set.AssertAPIMethod(t, "setMyCommands")
	set.AssertJSONFieldNested(t, "commands.1.command", "help")
	set.AssertJSONFieldNested(t, "scope.type", "chat")
	set.AssertJSONField(t, "language_code", "en")

	cmds, err := gw.GetCommands(ctx, sender.CommandOptions{})
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, "start", cmds[0].Command)
	server.LastCapture().AssertJSONFieldAbsent(t, "scope")

	require.NoError(t, gw.DeleteCommands(ctx, sender.CommandOptions{LanguageCode: "de"}))
	server.LastCapture().AssertJSONField(t, "language_code", "de")
}

func TestSetCommands_Validation(t *testing.T) {
	server, gw := newGateway(t)
	ctx := context.Background()

	err := gw.SetCommands(ctx, []tg.BotCommand{{Command: "Bad-Name", Description: "x"}}, sender.CommandOptions{})
	assert.ErrorIs(t, err, tg.ErrInvalidInput)

	err = gw.SetCommands(ctx, []tg.BotCommand{{Command: "ok", Description: strings.Repeat("d", 300)}}, sender.CommandOptions{})
	assert.ErrorIs(t, err, tg.ErrInvalidInput)

	many := make([]tg.BotCommand, tg.MaxBotCommands+1)
	err = gw.SetCommands(ctx, many, sender.CommandOptions{})
	assert.ErrorIs(t, err, tg.ErrInvalidInput)

	assert.Equal(t, 0, server.CaptureCount())
}
