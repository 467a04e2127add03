package sender_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/gramsea/internal/testutil"
	"github.com/prilive-com/gramsea/sender"
	"github.com/prilive-com/gramsea/tg"
)

// chatOf returns the chat_id of a JSON request as a string.
func chatOf(t *testing.T, r *http.Request) string {
	t.Helper()
	var body struct {
		ChatID json.Number `json:"chat_id"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&body))
	return body.ChatID.String()
}

func TestMass_ClassifiesOutcomes(t *testing.T) {
	server, gw := newGateway(t)
	server.On("sendMessage", func(w http.ResponseWriter, r *http.Request) {
		switch chatOf(t, r) {
		case "100":
			testutil.ReplyMessage(w, 1)
		case "200":
			testutil.ReplyForbidden(w, "Forbidden: bot was blocked by the user")
		default:
			dropConnection(t, w)
		}
	})

	mass := gw.Mass()
	require.NoError(t, mass.AddTargets(
		sender.Target{ChatID: 100, Text: "A"},
		sender.Target{ChatID: 200, Text: "B"},
		sender.Target{ChatID: 300, Text: "C"},
	))

	result, err := mass.Send(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, result.Sent())
	assert.Equal(t, []string{"200"}, result.Blocked())
	assert.Equal(t, []string{"300"}, result.Failed())
	assert.Equal(t, 3, result.TotalProcessed())
	assert.Equal(t, 33.33, result.SuccessRate())
	assert.False(t, result.IsAllSuccess())
	assert.NotEmpty(t, result.BatchID)
}

func TestMass_BadRequestIsBlockedOtherCodesFailed(t *testing.T) {
	server, gw := newGateway(t)
	server.On("sendMessage", func(w http.ResponseWriter, r *http.Request) {
		switch chatOf(t, r) {
		case "1":
			testutil.ReplyBadRequest(w, "Bad Request: chat not found")
		case "2":
			testutil.ReplyRateLimit(w, 3)
		default:
			testutil.ReplyServerError(w, 500, "Internal Server Error")
		}
	})
	mass := gw.Mass()
	require.NoError(t, mass.AddTargets(
		sender.Target{ChatID: 1, Text: "x"},
		sender.Target{ChatID: 2, Text: "x"},
		sender.Target{ChatID: 3, Text: "x"},
	))

	result, err := mass.Send(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, result.Blocked())
	assert.ElementsMatch(t, []string{"2", "3"}, result.Failed())
	assert.Equal(t, 0.0, result.SuccessRate())
}

func TestMass_AllSent(t *testing.T) {
	_, gw := newGateway(t)
	mass := gw.Mass()
	for _, id := range []any{1, "@two", int64(3)} {
		require.NoError(t, mass.AddTarget(sender.Target{ChatID: id, Text: "hi"}))
	}

	result, err := mass.Send(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "@two", "3"}, result.Sent())
	assert.True(t, result.IsAllSuccess())
	assert.Equal(t, 100.0, result.SuccessRate())
	assert.Positive(t, result.Duration)
}

func TestMass_NoTargets(t *testing.T) {
	server, gw := newGateway(t)

	result, err := gw.Mass().Send(context.Background())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, tg.ErrInvalidInput)
	assert.Equal(t, 0, server.CaptureCount())
}

func TestMass_AddTargetRequiresDestination(t *testing.T) {
	server, gw := newGateway(t)
	mass := gw.Mass()

	err := mass.AddTarget(sender.Target{Text: "orphan"})

	assert.ErrorIs(t, err, tg.ErrInvalidInput)
	assert.Equal(t, 0, mass.Count())
	assert.Equal(t, 0, server.CaptureCount())
}

func TestMass_AddTargetsIsAtomic(t *testing.T) {
	_, gw := newGateway(t)
	mass := gw.Mass()

	err := mass.AddTargets(
		sender.Target{ChatID: 1, Text: "ok"},
		sender.Target{ChatID: "", Text: "bad"},
	)

	assert.ErrorIs(t, err, tg.ErrInvalidInput)
	assert.Equal(t, 0, mass.Count())
}

func TestMass_ResetClearsTargets(t *testing.T) {
	_, gw := newGateway(t)
	mass := gw.Mass()
	require.NoError(t, mass.AddTarget(sender.Target{ChatID: 1, Text: "x"}))
	require.Equal(t, 1, mass.Count())

	mass.Reset()

	assert.Equal(t, 0, mass.Count())
}

func TestMass_ConcurrencyWindow(t *testing.T) {
	server, gw := newGateway(t)
	gate := testutil.NewGate()
	server.On("sendMessage", func(w http.ResponseWriter, r *http.Request) {
		gate.Wait()
		testutil.ReplyMessage(w, 1)
	})

	mass := gw.Mass().Concurrency(2)
	for i := 1; i <= 5; i++ {
		require.NoError(t, mass.AddTarget(sender.Target{ChatID: i, Text: "x"}))
	}

	done := make(chan *sender.MassSendResult, 1)
	go func() {
		result, err := mass.Send(context.Background())
		assert.NoError(t, err)
		done <- result
	}()

	for range 2 {
		select {
		case <-gate.Arrived():
		case <-time.After(5 * time.Second):
			t.Fatal("requests did not start")
		}
	}
	// A third request must not start while two are held.
	select {
	case <-gate.Arrived():
		t.Fatal("more than 2 requests in flight")
	case <-time.After(100 * time.Millisecond):
	}
	gate.Release()

	select {
	case result := <-done:
		assert.Equal(t, 5, result.SentCount())
	case <-time.After(5 * time.Second):
		t.Fatal("mass send did not finish")
	}
	assert.LessOrEqual(t, gate.Peak(), 2)
}

func TestMass_ConcurrencyClampedToOne(t *testing.T) {
	server, gw := newGateway(t)
	gate := testutil.NewGate()
	gate.Release()
	server.On("sendMessage", func(w http.ResponseWriter, r *http.Request) {
		gate.Wait()
		testutil.ReplyMessage(w, 1)
	})
	mass := gw.Mass().Concurrency(0)
	for i := 1; i <= 3; i++ {
		require.NoError(t, mass.AddTarget(sender.Target{ChatID: i, Text: "x"}))
	}

	result, err := mass.Send(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.SentCount())
	assert.Equal(t, 1, gate.Peak())
}

func TestMass_PerTargetRequests(t *testing.T) {
	server, gw := newGateway(t)
	mass := gw.Mass().Silent(true).Protect(true).AllowPaidBroadcast(true)
	require.NoError(t, mass.AddTargets(
		sender.Target{
			ChatID:      1,
			Text:        "Hi **John**",
			ReplyMarkup: tg.Confirm("y", "n"),
		},
		sender.Target{
			ChatID: 2,
			Text:   "_look_",
			Media:  sender.MediaList{"https://example.com/a.jpg"},
		},
		sender.Target{
			ChatID:      3,
			Text:        "album",
			Media:       sender.MediaList{"https://example.com/a.jpg", "https://example.com/b.jpg"},
			ReplyMarkup: tg.Confirm("y", "n"),
		},
	))

	result, err := mass.Send(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, result.SentCount())

	text := server.CapturesFor("sendMessage")
	require.Len(t, text, 1)
	text[0].AssertJSONField(t, "text", "Hi <b>John</b>")
	text[0].AssertJSONField(t, "parse_mode", "HTML")
	text[0].AssertJSONField(t, "disable_notification", true)
	text[0].AssertJSONField(t, "protect_content", true)
	text[0].AssertJSONField(t, "allow_paid_broadcast", true)
	text[0].AssertJSONFieldExists(t, "reply_markup")

	photo := server.CapturesFor("sendPhoto")
	require.Len(t, photo, 1)
	photo[0].AssertJSONField(t, "photo", "https://example.com/a.jpg")
	photo[0].AssertJSONField(t, "caption", "<i>look</i>")

	group := server.CapturesFor("sendMediaGroup")
	require.Len(t, group, 1)
	assert.NotContains(t, group[0].BodyString(), "caption")
	group[0].AssertJSONFieldAbsent(t, "reply_markup")
	group[0].AssertJSONField(t, "protect_content", true)
}

func TestMass_AlbumCaptionWithoutMarkup(t *testing.T) {
	server, gw := newGateway(t)
	mass := gw.Mass()
	require.NoError(t, mass.AddTargets(
		sender.Target{
			ChatID: 1,
			Text:   "**album**",
			Media:  sender.MediaList{"https://example.com/a.jpg", "https://example.com/b.mp4"},
		},
		sender.Target{
			ChatID:      2,
			Text:        "**album**",
			Media:       sender.MediaList{"https://example.com/a.jpg", "https://example.com/b.mp4"},
			ReplyMarkup: `{"inline_keyboard":[[{"text":"Go","callback_data":"go"}]]}`,
		},
	))

	result, err := mass.Send(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.SentCount())

	groups := server.CapturesFor("sendMediaGroup")
	require.Len(t, groups, 2)
	assert.Empty(t, server.CapturesFor("sendMessage"))
	for _, group := range groups {
		switch group.BodyMap(t)["chat_id"] {
		case float64(1):
			group.AssertJSONFieldNested(t, "media.0.caption", "<b>album</b>")
			group.AssertJSONFieldNested(t, "media.0.parse_mode", "HTML")
		case float64(2):
			assert.NotContains(t, group.BodyString(), "caption")
			group.AssertJSONFieldAbsent(t, "reply_markup")
		default:
			t.Fatalf("unexpected chat in %s", group.BodyString())
		}
	}
}

func TestMass_EmptyTargetSendsEmptyText(t *testing.T) {
	server, gw := newGateway(t)
	server.On("sendMessage", func(w http.ResponseWriter, r *http.Request) {
		testutil.ReplyBadRequest(w, "Bad Request: message text is empty")
	})
	mass := gw.Mass()
	require.NoError(t, mass.AddTarget(sender.Target{ChatID: 5}))

	result, err := mass.Send(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, result.Blocked())
	server.LastCapture().AssertJSONField(t, "text", "")
}

func TestMass_ReplyMarkupFromDecodedObject(t *testing.T) {
	server, gw := newGateway(t)
	mass := gw.Mass()
	require.NoError(t, mass.AddTarget(sender.Target{
		ChatID: 1,
		Text:   "x",
		ReplyMarkup: map[string]any{
			"inline_keyboard": []any{[]any{map[string]any{"text": "Go", "callback_data": "go"}}},
		},
	}))

	_, err := mass.Send(context.Background())

	require.NoError(t, err)
	server.LastCapture().AssertJSONFieldNested(t, "reply_markup.inline_keyboard.0.0.callback_data", "go")
}

func TestMass_InvalidParseMode(t *testing.T) {
	server, gw := newGateway(t)
	mass := gw.Mass().ParseMode("bogus")
	require.NoError(t, mass.AddTarget(sender.Target{ChatID: 1, Text: "x"}))

	_, err := mass.Send(context.Background())

	assert.ErrorIs(t, err, tg.ErrInvalidInput)
	assert.Equal(t, 0, server.CaptureCount())
}

func TestMass_CanceledContextFailsRemaining(t *testing.T) {
	server, gw := newGateway(t)
	mass := gw.Mass()
	require.NoError(t, mass.AddTargets(
		sender.Target{ChatID: 1, Text: "x"},
		sender.Target{ChatID: 2, Text: "x"},
	))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := mass.Send(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, result.FailedCount())
	assert.Equal(t, 0, server.CaptureCount())
}

func TestMass_RateLimit(t *testing.T) {
	server, gw := newGateway(t)
	mass := gw.Mass().RateLimit(20, 1)
	for i := 1; i <= 3; i++ {
		require.NoError(t, mass.AddTarget(sender.Target{ChatID: i, Text: "x"}))
	}

	result, err := mass.Send(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.SentCount())
	assert.Equal(t, 3, server.CaptureCount())
	assert.GreaterOrEqual(t, result.Duration, 90*time.Millisecond)
}

func TestMass_NormalizesFloatChatID(t *testing.T) {
	_, gw := newGateway(t)
	mass := gw.Mass()
	require.NoError(t, mass.AddTarget(sender.Target{ChatID: float64(123456789), Text: "x"}))

	result, err := mass.Send(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"123456789"}, result.Sent())
	assert.Equal(t, int64(123456789), mass.Targets()[0].ChatID)
}

func TestMassSendResult_String(t *testing.T) {
	_, gw := newGateway(t)
	mass := gw.Mass()
	require.NoError(t, mass.AddTarget(sender.Target{ChatID: 1}))
	result, err := mass.Send(context.Background())
	require.NoError(t, err)

	assert.Contains(t, result.String(), result.BatchID)
}
