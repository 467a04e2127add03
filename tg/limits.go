package tg

import (
	"strings"
	"unicode/utf8"
)

// Bot API limits.
const (
	MaxMessageText        = 4096
	MaxCaption            = 1024
	MaxCallbackData       = 64
	MaxInlineButtonsRow   = 8
	MaxReplyButtonsRow    = 12
	MaxKeyboardRows       = 100
	MaxFileDownload       = 20 << 20
	MaxPhotoUpload        = 10 << 20
	MaxFileUpload         = 50 << 20
	MinMediaGroup         = 2
	MaxMediaGroup         = 10
	MaxBotCommands        = 100
	MaxCommandDescription = 256
	MaxStartParam         = 64
	MaxPollQuestion       = 300
	MaxPollOption         = 100
	MaxPollOptions        = 10
	MaxMessageEntities    = 100

	// Messages per second across all chats.
	RateGlobal = 30
	// Messages per minute into one group.
	RatePerGroup = 20
)

// Truncate shortens s to at most n runes, ending with suffix when cut.
func Truncate(s string, n int, suffix string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	keep := n - utf8.RuneCountInString(suffix)
	if keep < 0 {
		keep = 0
	}
	return string([]rune(s)[:keep]) + suffix
}

// TruncateMessage fits s into a text message.
func TruncateMessage(s string) string { return Truncate(s, MaxMessageText, "...") }

// TruncateCaption fits s into a media caption.
func TruncateCaption(s string) string { return Truncate(s, MaxCaption, "...") }

// SplitText splits s into chunks of at most n runes, breaking on lines and,
// for over-long lines, on spaces. A single word longer than n is kept whole.
func SplitText(s string, n int) []string {
	if n <= 0 {
		n = MaxMessageText
	}
	if utf8.RuneCountInString(s) <= n {
		return []string{s}
	}

	var (
		chunks  []string
		current string
	)
	fits := func(a, sep, b string) (string, bool) {
		if a == "" {
			return b, utf8.RuneCountInString(b) <= n
		}
		joined := a + sep + b
		return joined, utf8.RuneCountInString(joined) <= n
	}

	for _, line := range strings.Split(s, "\n") {
		if joined, ok := fits(current, "\n", line); ok {
			current = joined
			continue
		}
		if current != "" {
			chunks = append(chunks, current)
		}
		current = ""
		if utf8.RuneCountInString(line) <= n {
			current = line
			continue
		}
		for _, word := range strings.Split(line, " ") {
			if joined, ok := fits(current, " ", word); ok {
				current = joined
				continue
			}
			if current != "" {
				chunks = append(chunks, current)
			}
			current = word
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
