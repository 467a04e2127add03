// Package tg provides the Bot API types shared by the gateway, the fluent
// senders and the mass sender.
//
// This package contains:
//   - The response envelope and the error taxonomy (APIError, NetworkError,
//     ValidationError and sentinel errors for errors.Is)
//   - Media type detection and album compatibility classes
//   - Inline and reply keyboards, link preview options
//   - Read models for updates, messages, users and chats
//   - Callback data packing, deep links and API limits
//   - SecretToken for safe token handling
//
// # Usage
//
//	import "github.com/prilive-com/gramsea/tg"
//
//	kb := tg.NewKeyboard().Callback("Yes", "vote:1").Callback("No", "vote:0").Build()
//
//	var apiErr *tg.APIError
//	if errors.As(err, &apiErr) && apiErr.IsBotBlocked() {
//		// drop the subscriber
//	}
package tg
