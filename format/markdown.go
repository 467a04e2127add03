package format

import (
	"html"
	"regexp"
	"strings"
)

type conversion struct {
	pattern *regexp.Regexp
	repl    string
}

// Applied in order: bold before italic, so ** is not read as two *.
var conversions = []conversion{
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "<b>$1</b>"},
	{regexp.MustCompile(`__(.*?)__`), "<b>$1</b>"},
	{regexp.MustCompile(`\*(.*?)\*`), "<i>$1</i>"},
	{regexp.MustCompile(`_(.*?)_`), "<i>$1</i>"},
	{regexp.MustCompile("`(.*?)`"), "<code>$1</code>"},
	{regexp.MustCompile(`~~(.*?)~~`), "<s>$1</s>"},
	{regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`), `<a href="$2">$1</a>`},
}

var syntaxPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\*\*.*?\*\*`),
	regexp.MustCompile(`__.*?__`),
	regexp.MustCompile(`\*.*?\*`),
	regexp.MustCompile(`_.*?_`),
	regexp.MustCompile("`.*?`"),
	regexp.MustCompile(`~~.*?~~`),
	regexp.MustCompile(`\[.*?\]\(.*?\)`),
}

// HasMarkdown reports whether text contains any supported markdown syntax.
func HasMarkdown(text string) bool {
	for _, p := range syntaxPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// MarkdownToHTML converts **bold**, __bold__, *italic*, _italic_, `code`,
// ~~strike~~ and [text](url) to HTML tags. Text without markdown syntax is
// returned unchanged. The rest of the text is not escaped.
func MarkdownToHTML(text string) string {
	if !HasMarkdown(text) {
		return text
	}
	for _, c := range conversions {
		text = c.pattern.ReplaceAllString(text, c.repl)
	}
	return text
}

// EscapeHTML escapes &, <, > and quotes for the HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

var markdownV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	`_`, `\_`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`(`, `\(`,
	`)`, `\)`,
	`~`, `\~`,
	"`", "\\`",
	`>`, `\>`,
	`#`, `\#`,
	`+`, `\+`,
	`-`, `\-`,
	`=`, `\=`,
	`|`, `\|`,
	`{`, `\{`,
	`}`, `\}`,
	`.`, `\.`,
	`!`, `\!`,
)

// EscapeMarkdownV2 escapes every character reserved by the MarkdownV2 parse mode.
func EscapeMarkdownV2(text string) string {
	return markdownV2Replacer.Replace(text)
}
