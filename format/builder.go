package format

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Builder accumulates HTML-formatted text. Every method escapes its text
// argument except Raw. The zero value is ready to use.
type Builder struct {
	sb strings.Builder
}

// New creates an empty Builder.
func New() *Builder { return &Builder{} }

func (b *Builder) wrap(openTag, text, closeTag string) *Builder {
	b.sb.WriteString(openTag)
	b.sb.WriteString(EscapeHTML(text))
	b.sb.WriteString(closeTag)
	return b
}

// Text appends escaped plain text.
func (b *Builder) Text(text string) *Builder { return b.wrap("", text, "") }

// Raw appends HTML as is.
func (b *Builder) Raw(html string) *Builder {
	b.sb.WriteString(html)
	return b
}

func (b *Builder) Bold(text string) *Builder      { return b.wrap("<b>", text, "</b>") }
func (b *Builder) Italic(text string) *Builder    { return b.wrap("<i>", text, "</i>") }
func (b *Builder) Underline(text string) *Builder { return b.wrap("<u>", text, "</u>") }
func (b *Builder) Strike(text string) *Builder    { return b.wrap("<s>", text, "</s>") }
func (b *Builder) Spoiler(text string) *Builder   { return b.wrap("<tg-spoiler>", text, "</tg-spoiler>") }
func (b *Builder) Code(text string) *Builder      { return b.wrap("<code>", text, "</code>") }
func (b *Builder) Quote(text string) *Builder     { return b.wrap("<blockquote>", text, "</blockquote>") }

// ExpandableQuote appends a blockquote collapsed by default.
func (b *Builder) ExpandableQuote(text string) *Builder {
	return b.wrap("<blockquote expandable>", text, "</blockquote>")
}

// Pre appends a code block, highlighted when language is set.
func (b *Builder) Pre(code, language string) *Builder {
	if language == "" {
		return b.wrap("<pre>", code, "</pre>")
	}
	return b.wrap(`<pre><code class="language-`+EscapeHTML(language)+`">`, code, "</code></pre>")
}

// Link appends an anchor.
func (b *Builder) Link(text, url string) *Builder {
	return b.wrap(`<a href="`+EscapeHTML(url)+`">`, text, "</a>")
}

// Mention links text to a user by id.
func (b *Builder) Mention(text string, userID int64) *Builder {
	return b.wrap(`<a href="tg://user?id=`+strconv.FormatInt(userID, 10)+`">`, text, "</a>")
}

// Username appends @username.
func (b *Builder) Username(username string) *Builder {
	return b.wrap("@", strings.TrimLeft(username, "@"), "")
}

// Hashtag appends #tag.
func (b *Builder) Hashtag(tag string) *Builder {
	return b.wrap("#", strings.TrimLeft(tag, "#"), "")
}

// NewLine appends n line breaks (at least one).
func (b *Builder) NewLine(n ...int) *Builder {
	count := 1
	if len(n) > 0 && n[0] > 0 {
		count = n[0]
	}
	b.sb.WriteString(strings.Repeat("\n", count))
	return b
}

// Space appends one space.
func (b *Builder) Space() *Builder {
	b.sb.WriteByte(' ')
	return b
}

// Separator appends a horizontal rule of n box-drawing characters.
func (b *Builder) Separator(n int) *Builder {
	b.sb.WriteString(strings.Repeat("─", n))
	return b
}

// When calls fn only if cond holds.
func (b *Builder) When(cond bool, fn func(*Builder)) *Builder {
	if cond {
		fn(b)
	}
	return b
}

// Len returns the length of the result in runes.
func (b *Builder) Len() int { return utf8.RuneCountInString(b.sb.String()) }

// Reset empties the builder.
func (b *Builder) Reset() *Builder {
	b.sb.Reset()
	return b
}

// String returns the formatted HTML.
func (b *Builder) String() string { return b.sb.String() }
