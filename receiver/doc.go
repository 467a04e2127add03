// Package receiver turns Bot API updates into a channel of tg.Update.
//
// # Long polling
//
// Poller calls getUpdates through a sender.Gateway, so polling shares the
// gateway's rate limiter, circuit breaker and token handling:
//
//	gw, _ := sender.New(token)
//	poller, err := receiver.NewPoller(gw, receiver.DefaultConfig())
//	updates := make(chan tg.Update, 100)
//	go func() { err = poller.Run(ctx, updates) }()
//
// The offset advances only after an update has been handed to the channel,
// so an interrupted Run redelivers anything not yet consumed.
//
// # Webhooks
//
// DecodeWebhook validates and parses a single webhook request for callers
// that host their own HTTP server:
//
//	update, err := receiver.DecodeWebhook(r, secret, 1<<20)
//	if err != nil {
//	    http.Error(w, err.Error(), receiver.StatusCode(err))
//	    return
//	}
package receiver
