package sender

import (
	"context"
	"slices"

	"github.com/prilive-com/gramsea/format"
	"github.com/prilive-com/gramsea/internal/validate"
	"github.com/prilive-com/gramsea/tg"
)

// Message builds one outgoing message and picks how to send it from the
// media it holds. Setters mutate the builder and return it. A Message is not
// safe for concurrent use.
type Message struct {
	common[*Message]
	body  string
	media []MediaItem
}

// Message returns a new Message builder bound to g.
func (g *Gateway) Message() *Message {
	m := &Message{}
	m.common = newCommon(g, m)
	return m
}

// Text sets the body from lightweight markdown, converted to HTML.
func (m *Message) Text(markdown string) *Message {
	m.body = format.MarkdownToHTML(markdown)
	return m
}

// HTML sets the body verbatim.
func (m *Message) HTML(html string) *Message {
	m.body = html
	return m
}

// Add appends a medium whose type is detected from its extension.
func (m *Message) Add(ref string) *Message {
	m.media = append(m.media, NewMediaItem(ref))
	return m
}

// AddMedia appends a medium of an explicit type.
func (m *Message) AddMedia(ref string, t tg.MediaType) *Message {
	m.media = append(m.media, MediaItem{URL: ref, Type: t})
	return m
}

// Photo appends a photo.
func (m *Message) Photo(ref string) *Message { return m.AddMedia(ref, tg.MediaPhoto) }

// Video appends a video.
func (m *Message) Video(ref string) *Message { return m.AddMedia(ref, tg.MediaVideo) }

// Audio appends an audio file.
func (m *Message) Audio(ref string) *Message { return m.AddMedia(ref, tg.MediaAudio) }

// Document appends a document.
func (m *Message) Document(ref string) *Message { return m.AddMedia(ref, tg.MediaDocument) }

// Animation appends a GIF or silent video.
func (m *Message) Animation(ref string) *Message { return m.AddMedia(ref, tg.MediaAnimation) }

// Voice appends a voice note.
func (m *Message) Voice(ref string) *Message { return m.AddMedia(ref, tg.MediaVoice) }

// Reset restores the builder to its initial state.
func (m *Message) Reset() *Message {
	m.opts = defaultDelivery()
	m.body = ""
	m.media = nil
	return m
}

// Send validates the message and sends it with the text, single media or
// media group strategy, depending on how many media items were added. The
// body becomes the caption when media is present.
func (m *Message) Send(ctx context.Context) (*tg.Response, error) {
	if err := validate.Destination(m.opts.chatID); err != nil {
		return nil, err
	}
	if m.body == "" && len(m.media) == 0 {
		return nil, validate.New("content", "either text or media is required")
	}

	switch selectStrategy(len(m.media)) {
	case strategyText:
		t := m.gw.Text()
		t.opts = m.opts
		t.text = m.body
		return t.Send(ctx)
	case strategyMedia:
		md := m.gw.Media()
		md.opts = m.opts
		md.item = m.media[0]
		md.caption = m.body
		return md.Send(ctx)
	default:
		g := m.gw.MediaGroup()
		g.opts = m.opts
		g.items = slices.Clone(m.media)
		g.caption = m.body
		return g.Send(ctx)
	}
}

// MessageSnapshot is a read-only copy of a Message's state.
type MessageSnapshot struct {
	ChatID             tg.ChatID
	Body               string
	Media              []MediaItem
	Keyboard           tg.ReplyMarkup
	ParseMode          tg.ParseMode
	Silent             bool
	Protect            bool
	ReplyTo            int
	AllowPaidBroadcast bool
}

// Snapshot returns the current state.
func (m *Message) Snapshot() MessageSnapshot {
	return MessageSnapshot{
		ChatID:             m.opts.chatID,
		Body:               m.body,
		Media:              slices.Clone(m.media),
		Keyboard:           m.opts.keyboard,
		ParseMode:          m.opts.parseMode,
		Silent:             m.opts.silent,
		Protect:            m.opts.protect,
		ReplyTo:            m.opts.replyTo,
		AllowPaidBroadcast: m.opts.allowPaidBroadcast,
	}
}
