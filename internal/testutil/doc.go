// Package testutil provides testing utilities for gramsea.
//
// This package is intended for internal testing only and should not be imported
// by external packages.
//
// # Mock Telegram Server
//
// MockTelegramServer answers Bot API calls keyed by method name:
//
//	server := testutil.NewMockServer(t)
//	server.On("sendMessage", func(w http.ResponseWriter, r *http.Request) {
//	    testutil.ReplyMessage(w, 123)
//	})
//	gw := testutil.NewTestGateway(t, server.BaseURL())
//
// Unregistered methods reply {"ok":true,"result":true}.
//
// # Request Capture
//
// All requests are captured and can be inspected, including multipart bodies:
//
//	cap := server.LastCapture()
//	cap.AssertAPIMethod(t, "sendMessage")
//	cap.AssertJSONField(t, "chat_id", float64(123))
//	cap.AssertJSONFieldNested(t, "media.0.caption", "hi")
//	form := cap.Form(t) // multipart uploads
//
// # Concurrency
//
// Gate holds handlers until released and records the peak number blocked,
// which bounds-checks concurrent senders.
//
// # Fake Sleeper
//
// FakeSleeper records sleep calls without actually sleeping:
//
//	sleeper := &testutil.FakeSleeper{}
//	gw := testutil.NewRetryTestGateway(t, server.BaseURL(), sleeper, 2)
//	assert.Equal(t, 2, sleeper.CallCount())
package testutil
