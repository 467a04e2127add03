package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prilive-com/gramsea/format"
)

func TestMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold and italic", "**bold** and *italic*", "<b>bold</b> and <i>italic</i>"},
		{"underscore bold", "__strong__ _em_", "<b>strong</b> <i>em</i>"},
		{"code", "run `go test`", "run <code>go test</code>"},
		{"strike", "~~old~~ new", "<s>old</s> new"},
		{"link", "see [docs](https://example.com)", `see <a href="https://example.com">docs</a>`},
		{"plain", "nothing here", "nothing here"},
		{"html passes through", "<b>already</b>", "<b>already</b>"},
		{"single marker", "2 * 3 = 6", "2 * 3 = 6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format.MarkdownToHTML(tt.in))
		})
	}
}

func TestMarkdownToHTML_Idempotent(t *testing.T) {
	once := format.MarkdownToHTML("**bold** and ~~gone~~")
	assert.Equal(t, once, format.MarkdownToHTML(once))
}

func TestHasMarkdown(t *testing.T) {
	assert.True(t, format.HasMarkdown("**x**"))
	assert.True(t, format.HasMarkdown("[a](b)"))
	assert.False(t, format.HasMarkdown("a < b"))
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; &#34;c&#34;", format.EscapeHTML(`a <b> & "c"`))
}

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, `Hello\! 1\+1\=2 \(ok\)\.`, format.EscapeMarkdownV2("Hello! 1+1=2 (ok)."))
	assert.Equal(t, `a\\b\_c`, format.EscapeMarkdownV2(`a\b_c`))
}

func TestBuilder(t *testing.T) {
	got := format.New().
		Bold("Welcome!").
		NewLine().
		Text("Hello, ").
		Mention("A<da>", 42).
		Space().
		Code("x < y").
		NewLine(2).
		Link("site", "https://a.io/?q=1&r=2").
		String()

	want := "<b>Welcome!</b>\nHello, <a href=\"tg://user?id=42\">A&lt;da&gt;</a> <code>x &lt; y</code>\n\n" +
		`<a href="https://a.io/?q=1&amp;r=2">site</a>`
	assert.Equal(t, want, got)
}

func TestBuilder_Blocks(t *testing.T) {
	b := format.New().Pre("fmt.Println()", "go")
	assert.Equal(t, `<pre><code class="language-go">fmt.Println()</code></pre>`, b.String())

	b.Reset().Pre("plain", "")
	assert.Equal(t, "<pre>plain</pre>", b.String())

	b.Reset().ExpandableQuote("long").Spoiler("s")
	assert.Equal(t, "<blockquote expandable>long</blockquote><tg-spoiler>s</tg-spoiler>", b.String())
}

func TestBuilder_Misc(t *testing.T) {
	b := format.New().
		Username("@ada").Space().
		Hashtag("#go").
		When(false, func(b *format.Builder) { b.Text("hidden") }).
		When(true, func(b *format.Builder) { b.Separator(3) })

	assert.Equal(t, "@ada #go───", b.String())
	assert.Equal(t, 11, b.Len())
}
