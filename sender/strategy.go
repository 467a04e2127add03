package sender

import "github.com/prilive-com/gramsea/tg"

// strategy is the send path chosen for a message.
type strategy int

const (
	strategyText  strategy = iota // sendMessage
	strategyMedia                 // send<Type>
	strategyGroup                 // sendMediaGroup
)

// selectStrategy picks the send path from the number of media items.
func selectStrategy(mediaCount int) strategy {
	switch {
	case mediaCount == 0:
		return strategyText
	case mediaCount == 1:
		return strategyMedia
	default:
		return strategyGroup
	}
}

func (s strategy) String() string {
	switch s {
	case strategyText:
		return "text"
	case strategyMedia:
		return "media"
	default:
		return "media_group"
	}
}

// MediaItem is one attachment: a URL, file id or local path plus its type.
type MediaItem struct {
	URL  string       `json:"url" yaml:"url"`
	Type tg.MediaType `json:"type,omitempty" yaml:"type,omitempty"`
}

// NewMediaItem detects the type of ref from its extension.
func NewMediaItem(ref string) MediaItem {
	return MediaItem{URL: ref, Type: tg.DetectMediaType(ref)}
}

// resolvedType returns Type, detecting it from URL when unset.
func (m MediaItem) resolvedType() tg.MediaType {
	if m.Type != "" {
		return m.Type
	}
	return tg.DetectMediaType(m.URL)
}
