// Package gramsea is a Telegram Bot API client built around fluent message
// builders and a bounded-concurrency mass sender.
//
// # Quick Start
//
//	bot, err := gramsea.New(token, gramsea.WithRetries(2))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bot.Close()
//
//	_, err = bot.Message().
//	    To(chatID).
//	    Text("Hello **world**").
//	    Add("https://example.com/cat.jpg").
//	    Send(ctx)
//
// The Message builder chooses sendMessage, a single-media method or
// sendMediaGroup from how many media references it holds.
//
// # Mass sending
//
//	mass := bot.Mass().Concurrency(20)
//	_ = mass.AddTargets(targets...)
//	result, err := mass.Send(ctx)
//	fmt.Println(result) // sent / blocked / failed
//
// # Receiving updates
//
//	if err := bot.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	for update := range bot.Updates() {
//	    ...
//	}
//
// # Packages
//
// The facade wraps packages that can be used on their own: sender holds the
// Gateway and builders, receiver the long-polling loop and webhook decoder,
// tg the shared types and error taxonomy, format the Markdown and HTML
// helpers.
package gramsea
