package sender

import (
	"encoding/json"

	"github.com/prilive-com/gramsea/internal/validate"
	"github.com/prilive-com/gramsea/tg"
)

// delivery holds the options shared by every builder.
type delivery struct {
	chatID             tg.ChatID
	parseMode          tg.ParseMode
	keyboard           tg.ReplyMarkup
	silent             bool
	protect            bool
	replyTo            int
	allowPaidBroadcast bool
}

func defaultDelivery() delivery {
	return delivery{parseMode: tg.DefaultParseMode}
}

// apply writes the set flags into params. reply_markup is written only when
// withKeyboard is true.
func (d *delivery) apply(params map[string]any, withKeyboard bool) {
	if withKeyboard && d.keyboard != nil {
		params["reply_markup"] = d.keyboard
	}
	if d.silent {
		params["disable_notification"] = true
	}
	if d.protect {
		params["protect_content"] = true
	}
	if d.replyTo != 0 {
		params["reply_to_message_id"] = d.replyTo
	}
	if d.allowPaidBroadcast {
		params["allow_paid_broadcast"] = true
	}
}

func (d *delivery) validate() error {
	if err := validate.Destination(d.chatID); err != nil {
		return err
	}
	return validate.ParseMode(d.parseMode)
}

// common implements the setters shared by the builders. B is the concrete
// builder type each setter returns, which keeps chains typed.
type common[B any] struct {
	gw   *Gateway
	self B
	opts delivery
}

func newCommon[B any](gw *Gateway, self B) common[B] {
	return common[B]{gw: gw, self: self, opts: defaultDelivery()}
}

// To sets the destination chat: a numeric id or an @username.
func (c *common[B]) To(chatID tg.ChatID) B {
	c.opts.chatID = chatID
	return c.self
}

// ParseMode sets the parse mode. The default is HTML; "" sends plain text.
func (c *common[B]) ParseMode(mode tg.ParseMode) B {
	c.opts.parseMode = mode
	return c.self
}

// Keyboard sets the reply markup. It accepts any tg.ReplyMarkup, or encoded
// JSON as string, []byte or json.RawMessage, or a decoded JSON object.
// nil, invalid JSON or an unsupported value clears the keyboard.
func (c *common[B]) Keyboard(markup any) B {
	c.opts.keyboard = toMarkup(markup)
	return c.self
}

// Silent sends the message without a notification sound.
func (c *common[B]) Silent(on bool) B {
	c.opts.silent = on
	return c.self
}

// Protect prevents forwarding and saving of the message.
func (c *common[B]) Protect(on bool) B {
	c.opts.protect = on
	return c.self
}

// ReplyTo makes the message a reply. 0 clears it.
func (c *common[B]) ReplyTo(messageID int) B {
	c.opts.replyTo = messageID
	return c.self
}

// AllowPaidBroadcast lets the message exceed the free broadcast limit for a fee.
func (c *common[B]) AllowPaidBroadcast(on bool) B {
	c.opts.allowPaidBroadcast = on
	return c.self
}

func toMarkup(markup any) tg.ReplyMarkup {
	switch m := markup.(type) {
	case nil:
		return nil
	case *tg.Keyboard:
		if m == nil {
			return nil
		}
		return m.Build()
	case tg.ReplyMarkup:
		return m
	case string:
		raw, _ := parseMarkup([]byte(m))
		return raw
	case []byte:
		raw, _ := parseMarkup(m)
		return raw
	case json.RawMessage:
		raw, _ := parseMarkup(m)
		return raw
	case map[string]any:
		data, err := json.Marshal(m)
		if err != nil {
			return nil
		}
		raw, _ := parseMarkup(data)
		return raw
	default:
		return nil
	}
}

// parseMarkup wraps tg.ParseMarkup so a failed parse yields a nil interface.
func parseMarkup(data []byte) (tg.ReplyMarkup, bool) {
	raw, ok := tg.ParseMarkup(data)
	if !ok {
		return nil, false
	}
	return raw, true
}
