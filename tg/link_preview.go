package tg

// LinkPreviewOptions controls the link preview generated for a text message.
type LinkPreviewOptions struct {
	IsDisabled       bool   `json:"is_disabled,omitempty"`
	URL              string `json:"url,omitempty"`
	PreferSmallMedia bool   `json:"prefer_small_media,omitempty"`
	PreferLargeMedia bool   `json:"prefer_large_media,omitempty"`
	ShowAboveText    bool   `json:"show_above_text,omitempty"`
}

// IsZero reports whether no option is set, in which case the field is omitted.
func (o *LinkPreviewOptions) IsZero() bool {
	return o == nil || *o == LinkPreviewOptions{}
}
