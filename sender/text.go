package sender

import (
	"context"

	"github.com/prilive-com/gramsea/format"
	"github.com/prilive-com/gramsea/internal/validate"
	"github.com/prilive-com/gramsea/tg"
)

// Text builds a sendMessage call.
type Text struct {
	common[*Text]
	text    string
	preview tg.LinkPreviewOptions
}

// Text returns a new Text builder bound to g.
func (g *Gateway) Text() *Text {
	t := &Text{}
	t.common = newCommon(g, t)
	return t
}

// Text sets the message from lightweight markdown, converted to HTML.
func (t *Text) Text(markdown string) *Text {
	t.text = format.MarkdownToHTML(markdown)
	return t
}

// HTML sets the message verbatim.
func (t *Text) HTML(html string) *Text {
	t.text = html
	return t
}

// DisablePreview turns the link preview off.
func (t *Text) DisablePreview(on bool) *Text {
	t.preview.IsDisabled = on
	return t
}

// PreviewURL sets the URL used for the preview instead of the first link.
func (t *Text) PreviewURL(url string) *Text {
	t.preview.URL = url
	return t
}

// PreferSmallMedia shrinks the preview media. It clears PreferLargeMedia.
func (t *Text) PreferSmallMedia(on bool) *Text {
	t.preview.PreferSmallMedia = on
	if on {
		t.preview.PreferLargeMedia = false
	}
	return t
}

// PreferLargeMedia enlarges the preview media. It clears PreferSmallMedia.
func (t *Text) PreferLargeMedia(on bool) *Text {
	t.preview.PreferLargeMedia = on
	if on {
		t.preview.PreferSmallMedia = false
	}
	return t
}

// ShowPreviewAboveText places the preview above the message text.
func (t *Text) ShowPreviewAboveText(on bool) *Text {
	t.preview.ShowAboveText = on
	return t
}

// Reset restores the builder to its initial state.
func (t *Text) Reset() *Text {
	t.opts = defaultDelivery()
	t.text = ""
	t.preview = tg.LinkPreviewOptions{}
	return t
}

// Send calls sendMessage.
func (t *Text) Send(ctx context.Context) (*tg.Response, error) {
	if err := t.opts.validate(); err != nil {
		return nil, err
	}
	if err := validate.Required("text", t.text, "text is required"); err != nil {
		return nil, err
	}
	return t.gw.Invoke(ctx, "sendMessage", t.params())
}

func (t *Text) params() map[string]any {
	params := map[string]any{
		"chat_id": t.opts.chatID,
		"text":    t.text,
	}
	if t.opts.parseMode != "" {
		params["parse_mode"] = t.opts.parseMode
	}
	t.opts.apply(params, true)
	if !t.preview.IsZero() {
		preview := t.preview
		params["link_preview_options"] = &preview
	}
	return params
}
