// Package sender sends messages through the Telegram Bot API.
//
// A Gateway owns the bot token and turns any method name plus parameters
// into one HTTP call, guarded by a circuit breaker and a rate limiter:
//
//	gw, err := sender.New(token)
//	if err != nil {
//	    return err
//	}
//	defer gw.Close()
//
//	resp, err := gw.Invoke(ctx, "sendDice", map[string]any{"chat_id": chatID})
//
// Fluent builders accumulate one message and send it in a single call.
// Message picks a strategy from the number of media items: none sends text,
// one sends that medium, two or more send a media group.
//
//	resp, err := gw.Message().
//	    To(chatID).
//	    Text("**Hello** _world_").
//	    Keyboard(tg.Confirm("yes", "no")).
//	    Send(ctx)
//
// MassSender delivers independent messages to many chats with bounded
// concurrency and tallies each target as sent, blocked, or failed:
//
//	mass := gw.Mass().Concurrency(10)
//	if err := mass.AddTargets(targets...); err != nil {
//	    return err
//	}
//	result, err := mass.Send(ctx)
//
// Failed calls return *tg.APIError, *tg.NetworkError or *tg.ValidationError;
// use errors.Is with the tg sentinels to branch on them.
package sender
