package testutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/gramsea/internal/testutil"
)

func post(t *testing.T, url, contentType string, body *bytes.Buffer) *http.Response {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	resp, err := http.Post(url, contentType, body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) testutil.TelegramEnvelope {
	t.Helper()
	var envelope testutil.TelegramEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func TestMockServer_CapturesRequests(t *testing.T) {
	server := testutil.NewMockServer(t)

	post(t, server.BotURL(testutil.TestToken, "getMe"), "application/json", nil)

	assert.Equal(t, 1, server.CaptureCount())

	cap := server.LastCapture()
	require.NotNil(t, cap)
	assert.Equal(t, "POST", cap.Method)
	assert.Equal(t, "getMe", cap.APIMethod)
	assert.Equal(t, "/bot"+testutil.TestToken+"/getMe", cap.Path)
}

func TestMockServer_HandlerByAPIMethod(t *testing.T) {
	server := testutil.NewMockServer(t)

	server.On("sendMessage", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyMessage(w, 42)
	})

	resp := post(t, server.BotURL("other:token", "sendMessage"), "application/json", nil)
	envelope := decodeEnvelope(t, resp)

	assert.True(t, envelope.OK)
	result, ok := envelope.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), result["message_id"])
	assert.Equal(t, 1, server.CallCount("sendMessage"))
}

func TestMockServer_DefaultSuccess(t *testing.T) {
	server := testutil.NewMockServer(t)

	resp, err := http.Get(server.BotURL(testutil.TestToken, "unknown"))
	require.NoError(t, err)
	defer resp.Body.Close()

	envelope := decodeEnvelope(t, resp)
	assert.True(t, envelope.OK)
	assert.Equal(t, true, envelope.Result)
}

func TestMockServer_FileDownloads(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.OnFile("photos/a.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg"))
	})

	resp, err := http.Get(server.BaseURL() + "/file/bot" + testutil.TestToken + "/photos/a.jpg")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	missing, err := http.Get(server.BaseURL() + "/file/bot" + testutil.TestToken + "/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestMockServer_Reset(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.On("getMe", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyForbidden(w, "nope")
	})

	post(t, server.BotURL(testutil.TestToken, "getMe"), "application/json", nil)
	post(t, server.BotURL(testutil.TestToken, "getMe"), "application/json", nil)
	assert.Equal(t, 2, server.CaptureCount())

	server.Reset()
	assert.Equal(t, 0, server.CaptureCount())

	resp := post(t, server.BotURL(testutil.TestToken, "getMe"), "application/json", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "handlers are cleared")
}

func TestMockServer_TimeBetweenCaptures(t *testing.T) {
	server := testutil.NewMockServer(t)

	post(t, server.BaseURL()+"/test1", "application/json", nil)
	time.Sleep(50 * time.Millisecond)
	post(t, server.BaseURL()+"/test2", "application/json", nil)

	assert.GreaterOrEqual(t, server.TimeBetweenCaptures(0, 1), 50*time.Millisecond)
}

func TestReplyError_WritesStatus(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.On("sendMessage", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyForbidden(w, "bot was blocked by the user")
	})

	resp := post(t, server.BotURL(testutil.TestToken, "sendMessage"), "application/json", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	assert.False(t, envelope.OK)
	assert.Equal(t, 403, envelope.ErrorCode)
	assert.Equal(t, "Forbidden: bot was blocked by the user", envelope.Description)
}

func TestReplyRateLimit(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.On("sendMessage", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyRateLimit(w, 5)
	})

	resp := post(t, server.BotURL(testutil.TestToken, "sendMessage"), "application/json", nil)
	assert.Equal(t, "5", resp.Header.Get("Retry-After"))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, 429, envelope.ErrorCode)
	require.NotNil(t, envelope.Parameters)
	assert.Equal(t, 5, envelope.Parameters.RetryAfter)
}

func TestReplyRaw(t *testing.T) {
	server := testutil.NewMockServer(t)
	server.On("getMe", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyRaw(w, http.StatusBadGateway, "<html>bad gateway</html>")
	})

	resp := post(t, server.BotURL(testutil.TestToken, "getMe"), "application/json", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestCapture_JSONAssertions(t *testing.T) {
	server := testutil.NewMockServer(t)

	post(t, server.BotURL(testutil.TestToken, "sendMediaGroup"), "application/json", jsonBody(map[string]any{
		"chat_id": 123,
		"media": []map[string]any{
			{"type": "photo", "media": "a.jpg", "caption": "hi"},
			{"type": "video", "media": "b.mp4"},
		},
		"link_preview_options": map[string]any{"is_disabled": true},
	}))

	cap := server.LastCapture()
	require.NotNil(t, cap)
	cap.AssertAPIMethod(t, "sendMediaGroup")
	cap.AssertContentType(t, "application/json")
	cap.AssertJSONField(t, "chat_id", float64(123))
	cap.AssertJSONFieldExists(t, "media")
	cap.AssertJSONFieldAbsent(t, "parse_mode")
	cap.AssertJSONFieldNested(t, "media.0.caption", "hi")
	cap.AssertJSONFieldNested(t, "media.1.type", "video")
	cap.AssertJSONFieldNested(t, "link_preview_options.is_disabled", true)
}

func TestCapture_Form(t *testing.T) {
	server := testutil.NewMockServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("chat_id", "42"))
	fw, err := mw.CreateFormFile("photo", "cat.jpg")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("meow"))
	require.NoError(t, mw.Close())

	post(t, server.BotURL(testutil.TestToken, "sendPhoto"), mw.FormDataContentType(), &buf)

	cap := server.LastCapture()
	require.NotNil(t, cap)
	require.True(t, cap.IsMultipart())

	form := cap.Form(t)
	assert.Equal(t, "42", form.Fields["chat_id"])
	require.Contains(t, form.Files, "photo")
	assert.Equal(t, "cat.jpg", form.Files["photo"].Filename)
	assert.Equal(t, "meow", string(form.Files["photo"].Content))
}

func TestGate_TracksPeak(t *testing.T) {
	gate := testutil.NewGate()
	var wg sync.WaitGroup

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gate.Wait()
		}()
	}
	for i := 0; i < 3; i++ {
		<-gate.Arrived()
	}

	assert.Equal(t, 3, gate.InFlight())
	gate.Release()
	wg.Wait()

	assert.Equal(t, 0, gate.InFlight())
	assert.Equal(t, 3, gate.Peak())
}

func TestFakeSleeper_RecordsCalls(t *testing.T) {
	sleeper := &testutil.FakeSleeper{}
	ctx := context.Background()

	require.NoError(t, sleeper.Sleep(ctx, 100*time.Millisecond))
	require.NoError(t, sleeper.Sleep(ctx, 200*time.Millisecond))

	assert.Equal(t, 2, sleeper.CallCount())
	assert.Equal(t, 100*time.Millisecond, sleeper.CallAt(0))
	assert.Equal(t, 200*time.Millisecond, sleeper.CallAt(1))
	assert.Equal(t, 200*time.Millisecond, sleeper.LastCall())
	assert.Equal(t, 300*time.Millisecond, sleeper.TotalDuration())
}

func TestFakeSleeper_RespectsContextCancel(t *testing.T) {
	sleeper := &testutil.FakeSleeper{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sleeper.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sleeper.CallCount())
}

func TestFakeSleeper_Reset(t *testing.T) {
	sleeper := &testutil.FakeSleeper{}
	ctx := context.Background()

	_ = sleeper.Sleep(ctx, time.Second)
	_ = sleeper.Sleep(ctx, time.Second)
	assert.Equal(t, 2, sleeper.CallCount())

	sleeper.Reset()
	assert.Equal(t, 0, sleeper.CallCount())
}

func TestFixtures(t *testing.T) {
	user := testutil.TestUser()
	assert.Equal(t, testutil.TestUserID, user.ID)
	assert.False(t, user.IsBot)

	chat := testutil.TestChat()
	assert.Equal(t, testutil.TestChatID, chat.ID)
	assert.Equal(t, "private", chat.Type)

	msg := testutil.TestMessage(42, "Hello World")
	assert.Equal(t, 42, msg.MessageID)
	assert.Equal(t, "Hello World", msg.Text)

	cb := testutil.TestCallbackQuery("cb_123", "button_data")
	assert.Equal(t, "cb_123", cb.ID)
	assert.Equal(t, "button_data", cb.Data)

	path := testutil.TempFile(t, "a.txt", "data")
	assert.FileExists(t, path)
}

func jsonBody(v any) *bytes.Buffer {
	data, _ := json.Marshal(v)
	return bytes.NewBuffer(data)
}
