package sender

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/prilive-com/gramsea/format"
	"github.com/prilive-com/gramsea/internal/transport"
	"github.com/prilive-com/gramsea/internal/validate"
	"github.com/prilive-com/gramsea/tg"
)

// MediaGroup builds a sendMediaGroup call (an album of 2 to 10 items).
// There are no Animation or Voice setters: those types cannot form an album,
// and AddMedia still accepts them for callers that need it.
type MediaGroup struct {
	common[*MediaGroup]
	items   []MediaItem
	caption string
}

// MediaGroup returns a new MediaGroup builder bound to g.
func (g *Gateway) MediaGroup() *MediaGroup {
	mg := &MediaGroup{}
	mg.common = newCommon(g, mg)
	return mg
}

// Add appends a medium whose type is detected from its extension.
func (mg *MediaGroup) Add(refs ...string) *MediaGroup {
	for _, ref := range refs {
		mg.items = append(mg.items, NewMediaItem(ref))
	}
	return mg
}

// AddMedia appends a medium of an explicit type.
func (mg *MediaGroup) AddMedia(ref string, t tg.MediaType) *MediaGroup {
	mg.items = append(mg.items, MediaItem{URL: ref, Type: t})
	return mg
}

// Photo appends a photo.
func (mg *MediaGroup) Photo(ref string) *MediaGroup { return mg.AddMedia(ref, tg.MediaPhoto) }

// Video appends a video.
func (mg *MediaGroup) Video(ref string) *MediaGroup { return mg.AddMedia(ref, tg.MediaVideo) }

// Audio appends an audio file.
func (mg *MediaGroup) Audio(ref string) *MediaGroup { return mg.AddMedia(ref, tg.MediaAudio) }

// Document appends a document.
func (mg *MediaGroup) Document(ref string) *MediaGroup { return mg.AddMedia(ref, tg.MediaDocument) }

// Caption sets the album caption from lightweight markdown, converted to HTML.
func (mg *MediaGroup) Caption(markdown string) *MediaGroup {
	mg.caption = format.MarkdownToHTML(markdown)
	return mg
}

// CaptionHTML sets the album caption verbatim.
func (mg *MediaGroup) CaptionHTML(html string) *MediaGroup {
	mg.caption = html
	return mg
}

// Reset restores the builder to its initial state.
func (mg *MediaGroup) Reset() *MediaGroup {
	mg.opts = defaultDelivery()
	mg.items = nil
	mg.caption = ""
	return mg
}

// Validate checks the destination, the item count and that all items
// belong to one compatibility class.
func (mg *MediaGroup) Validate() error {
	if err := mg.opts.validate(); err != nil {
		return err
	}
	if len(mg.items) < tg.MinMediaGroup {
		return validate.New("media", "media group requires at least 2 media items")
	}
	if len(mg.items) > tg.MaxMediaGroup {
		return validate.Newf("media", "media group allows at most %d media items, got %d", tg.MaxMediaGroup, len(mg.items))
	}
	return checkGroupClasses(mg.items)
}

// checkGroupClasses fails when the items span more than one compatibility
// class. Types without a class (animation, voice) are not counted.
func checkGroupClasses(items []MediaItem) error {
	var (
		types   []string
		classes []tg.MediaClass
	)
	for _, item := range items {
		t := item.resolvedType()
		if !slices.Contains(types, string(t)) {
			types = append(types, string(t))
		}
		if c := t.Class(); c != "" && !slices.Contains(classes, c) {
			classes = append(classes, c)
		}
	}
	if len(classes) > 1 {
		return validate.Newf("media", "cannot mix media types in one group: %s. %s",
			strings.Join(types, ", "), tg.MediaGroupRules)
	}
	return nil
}

// Send calls sendMediaGroup. When both a caption and a keyboard are set, the
// caption is first sent as a separate text message carrying the keyboard,
// since albums cannot have reply markup. Otherwise the caption goes on the
// first item.
func (mg *MediaGroup) Send(ctx context.Context) (*tg.Response, error) {
	if err := mg.Validate(); err != nil {
		return nil, err
	}

	caption := mg.caption
	if caption != "" && mg.opts.keyboard != nil {
		t := mg.gw.Text()
		t.opts = mg.opts
		t.text = caption
		if _, err := t.Send(ctx); err != nil {
			return nil, err
		}
		caption = ""
	}

	return mg.gw.Invoke(ctx, "sendMediaGroup", mg.params(caption))
}

func (mg *MediaGroup) params(caption string) map[string]any {
	params := map[string]any{"chat_id": mg.opts.chatID}
	params["media"] = buildInputMedia(mg.items, caption, mg.opts.parseMode, params)
	mg.opts.apply(params, false)
	return params
}

// buildInputMedia renders items as the sendMediaGroup media array. The
// caption goes on the first item only. Local files are attached as
// attach://fileN, with the path stored under fileN in params.
func buildInputMedia(items []MediaItem, caption string, mode tg.ParseMode, params map[string]any) []tg.InputMedia {
	media := make([]tg.InputMedia, 0, len(items))
	for i, item := range items {
		im := tg.InputMedia{Type: item.resolvedType(), Media: item.URL}
		if transport.IsLocalFile(item.URL) {
			key := fmt.Sprintf("file%d", i)
			params[key] = item.URL
			im.Media = "attach://" + key
		}
		if i == 0 && caption != "" {
			im.Caption = caption
			im.ParseMode = mode
		}
		media = append(media, im)
	}
	return media
}
