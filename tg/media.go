package tg

import (
	"net/url"
	"path"
	"slices"
	"strings"
)

// MediaType is the type tag of an attachment; it is also the parameter name
// of the matching send method (sendPhoto takes "photo").
type MediaType string

const (
	MediaPhoto     MediaType = "photo"
	MediaVideo     MediaType = "video"
	MediaAudio     MediaType = "audio"
	MediaDocument  MediaType = "document"
	MediaAnimation MediaType = "animation"
	MediaVoice     MediaType = "voice"
)

func (t MediaType) String() string { return string(t) }

// Method returns the Bot API method sending this media type, e.g. "sendPhoto".
func (t MediaType) Method() string {
	if t == "" {
		return ""
	}
	return "send" + strings.ToUpper(string(t[:1])) + string(t[1:])
}

// MediaClass groups media types that may share one album.
type MediaClass string

const (
	ClassVisual   MediaClass = "visual"   // photo, video
	ClassDocument MediaClass = "document" // document
	ClassAudio    MediaClass = "audio"    // audio
)

// Class returns the album compatibility class. Types outside the three classes
// report "" and do not count toward any class.
func (t MediaType) Class() MediaClass {
	switch t {
	case MediaPhoto, MediaVideo:
		return ClassVisual
	case MediaDocument:
		return ClassDocument
	case MediaAudio:
		return ClassAudio
	}
	return ""
}

// MediaGroupRules is the human description of the album compatibility rules.
const MediaGroupRules = "Photo/Video can be grouped together. Documents can only be grouped with documents. Audio can only be grouped with audio."

var extensionTypes = map[string]MediaType{
	"jpg": MediaPhoto, "jpeg": MediaPhoto, "png": MediaPhoto,
	"gif": MediaPhoto, "webp": MediaPhoto, "bmp": MediaPhoto,

	"mp4": MediaVideo, "avi": MediaVideo, "mov": MediaVideo,
	"mkv": MediaVideo, "webm": MediaVideo, "flv": MediaVideo,
	"wmv": MediaVideo, "3gp": MediaVideo,

	"mp3": MediaAudio, "wav": MediaAudio, "ogg": MediaAudio,
	"flac": MediaAudio, "m4a": MediaAudio, "aac": MediaAudio,
	"wma": MediaAudio,

	"oga": MediaVoice,
}

var extensionMIME = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"tiff": "image/tiff",
	"tif":  "image/tiff",

	"mp4":  "video/mp4",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"mkv":  "video/x-matroska",
	"webm": "video/webm",
	"flv":  "video/x-flv",
	"wmv":  "video/x-ms-wmv",
	"3gp":  "video/3gpp",

	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"oga":  "audio/ogg",
	"flac": "audio/flac",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"wma":  "audio/x-ms-wma",

	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"zip":  "application/zip",
	"rar":  "application/x-rar-compressed",
	"7z":   "application/x-7z-compressed",
	"tar":  "application/x-tar",
	"gz":   "application/gzip",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"json": "application/json",
	"xml":  "application/xml",
	"html": "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
}

// Extension returns the lower-cased extension of a URL or path without the dot.
// Query string and fragment are ignored.
func Extension(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	} else if i := strings.IndexAny(ref, "?#"); i >= 0 {
		p = ref[:i]
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// DetectMediaType derives the media type from the file extension.
// Unknown extensions are documents.
func DetectMediaType(ref string) MediaType {
	if t, ok := extensionTypes[Extension(ref)]; ok {
		return t
	}
	return MediaDocument
}

// MimeType returns the MIME type for the file extension, defaulting to
// application/octet-stream.
func MimeType(ref string) string {
	if m, ok := extensionMIME[Extension(ref)]; ok {
		return m
	}
	return "application/octet-stream"
}

// ExtensionsOf lists, sorted, the extensions detected as the given type.
func ExtensionsOf(t MediaType) []string {
	var out []string
	for ext, mt := range extensionTypes {
		if mt == t {
			out = append(out, ext)
		}
	}
	slices.Sort(out)
	return out
}

// InputMedia is one element of the sendMediaGroup "media" array.
type InputMedia struct {
	Type      MediaType `json:"type"`
	Media     string    `json:"media"`
	Caption   string    `json:"caption,omitempty"`
	ParseMode ParseMode `json:"parse_mode,omitempty"`
}
