// Package format converts lightweight markdown to the Bot API HTML subset and
// builds HTML-formatted messages fluently.
//
//	text := format.New().
//		Bold("Welcome!").NewLine().
//		Text("Hello, ").Mention("Ada", 42).
//		String()
//
// MarkdownToHTML is what the senders apply to text set with Text or Caption.
// It leaves input without markdown syntax untouched, so HTML passes through.
package format
