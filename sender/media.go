package sender

import (
	"context"

	"github.com/prilive-com/gramsea/format"
	"github.com/prilive-com/gramsea/internal/validate"
	"github.com/prilive-com/gramsea/tg"
)

// Media builds a single-media call such as sendPhoto or sendDocument.
type Media struct {
	common[*Media]
	item    MediaItem
	caption string
}

// Media returns a new Media builder bound to g.
func (g *Gateway) Media() *Media {
	m := &Media{}
	m.common = newCommon(g, m)
	return m
}

// File sets the medium, detecting its type from the extension.
func (m *Media) File(ref string) *Media {
	m.item = NewMediaItem(ref)
	return m
}

// As sets the medium with an explicit type.
func (m *Media) As(ref string, t tg.MediaType) *Media {
	m.item = MediaItem{URL: ref, Type: t}
	return m
}

// Photo sets a photo.
func (m *Media) Photo(ref string) *Media { return m.As(ref, tg.MediaPhoto) }

// Video sets a video.
func (m *Media) Video(ref string) *Media { return m.As(ref, tg.MediaVideo) }

// Audio sets an audio file.
func (m *Media) Audio(ref string) *Media { return m.As(ref, tg.MediaAudio) }

// Document sets a document.
func (m *Media) Document(ref string) *Media { return m.As(ref, tg.MediaDocument) }

// Animation sets a GIF or silent video.
func (m *Media) Animation(ref string) *Media { return m.As(ref, tg.MediaAnimation) }

// Voice sets a voice note.
func (m *Media) Voice(ref string) *Media { return m.As(ref, tg.MediaVoice) }

// Caption sets the caption from lightweight markdown, converted to HTML.
func (m *Media) Caption(markdown string) *Media {
	m.caption = format.MarkdownToHTML(markdown)
	return m
}

// CaptionHTML sets the caption verbatim.
func (m *Media) CaptionHTML(html string) *Media {
	m.caption = html
	return m
}

// Reset restores the builder to its initial state.
func (m *Media) Reset() *Media {
	m.opts = defaultDelivery()
	m.item = MediaItem{}
	m.caption = ""
	return m
}

// Send calls the send method matching the media type.
func (m *Media) Send(ctx context.Context) (*tg.Response, error) {
	if err := m.opts.validate(); err != nil {
		return nil, err
	}
	if err := validate.Required("media", m.item.URL, "media is required"); err != nil {
		return nil, err
	}
	mediaType := m.item.resolvedType()
	return m.gw.Invoke(ctx, mediaType.Method(), m.params(mediaType))
}

func (m *Media) params(mediaType tg.MediaType) map[string]any {
	params := map[string]any{
		"chat_id":         m.opts.chatID,
		string(mediaType): m.item.URL,
	}
	if m.caption != "" {
		params["caption"] = m.caption
		if m.opts.parseMode != "" {
			params["parse_mode"] = m.opts.parseMode
		}
	}
	m.opts.apply(params, true)
	return params
}
