package tg

import (
	"encoding/json"
	"iter"
	"strconv"
	"unicode/utf8"
)

// ReplyMarkup is implemented by every keyboard type accepted as reply_markup.
type ReplyMarkup interface {
	replyMarkup()
}

// InlineKeyboardMarkup represents an inline keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton represents a button in an inline keyboard.
type InlineKeyboardButton struct {
	Text                         string          `json:"text"`
	URL                          string          `json:"url,omitempty"`
	CallbackData                 string          `json:"callback_data,omitempty"`
	WebApp                       *WebAppInfo     `json:"web_app,omitempty"`
	LoginURL                     *LoginURL       `json:"login_url,omitempty"`
	SwitchInlineQuery            *string         `json:"switch_inline_query,omitempty"`
	SwitchInlineQueryCurrentChat *string         `json:"switch_inline_query_current_chat,omitempty"`
	CopyText                     *CopyTextButton `json:"copy_text,omitempty"`
	Pay                          bool            `json:"pay,omitempty"`
}

// WebAppInfo contains information about a Web App.
type WebAppInfo struct {
	URL string `json:"url"`
}

// LoginURL represents HTTP URL login button parameters.
type LoginURL struct {
	URL                string `json:"url"`
	ForwardText        string `json:"forward_text,omitempty"`
	BotUsername        string `json:"bot_username,omitempty"`
	RequestWriteAccess bool   `json:"request_write_access,omitempty"`
}

// CopyTextButton copies Text to the clipboard when pressed.
type CopyTextButton struct {
	Text string `json:"text"`
}

// ReplyKeyboardMarkup is a custom keyboard replacing the system one.
type ReplyKeyboardMarkup struct {
	Keyboard              [][]KeyboardButton `json:"keyboard"`
	IsPersistent          bool               `json:"is_persistent,omitempty"`
	ResizeKeyboard        bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard       bool               `json:"one_time_keyboard,omitempty"`
	InputFieldPlaceholder string             `json:"input_field_placeholder,omitempty"`
	Selective             bool               `json:"selective,omitempty"`
}

// KeyboardButton is one button of a reply keyboard.
type KeyboardButton struct {
	Text            string      `json:"text"`
	RequestContact  bool        `json:"request_contact,omitempty"`
	RequestLocation bool        `json:"request_location,omitempty"`
	WebApp          *WebAppInfo `json:"web_app,omitempty"`
}

// ReplyKeyboardRemove hides the current custom keyboard.
type ReplyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
	Selective      bool `json:"selective,omitempty"`
}

// ForceReply shows a reply interface to the user.
type ForceReply struct {
	ForceReply            bool   `json:"force_reply"`
	InputFieldPlaceholder string `json:"input_field_placeholder,omitempty"`
	Selective             bool   `json:"selective,omitempty"`
}

func (*InlineKeyboardMarkup) replyMarkup() {}
func (*ReplyKeyboardMarkup) replyMarkup()  {}
func (*ReplyKeyboardRemove) replyMarkup()  {}
func (*ForceReply) replyMarkup()           {}
func (*Keyboard) replyMarkup()             {}
func (RawMarkup) replyMarkup()             {}

// RawMarkup is a reply markup given as already encoded JSON.
type RawMarkup json.RawMessage

// MarshalJSON returns the markup unchanged.
func (r RawMarkup) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// ParseMarkup accepts encoded JSON describing a reply markup. It reports false
// when data is not a JSON object.
func ParseMarkup(data []byte) (RawMarkup, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil || probe == nil {
		return nil, false
	}
	return RawMarkup(data), true
}

// Button constructors

// Btn creates a callback button (most common type).
func Btn(text, callbackData string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, CallbackData: callbackData}
}

// BtnURL creates a URL button.
func BtnURL(text, url string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, URL: url}
}

// BtnWebApp creates a Web App button.
func BtnWebApp(text, url string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, WebApp: &WebAppInfo{URL: url}}
}

// BtnLogin creates a login URL button.
func BtnLogin(text, url string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, LoginURL: &LoginURL{URL: url}}
}

// BtnSwitch creates an inline query switch button. An empty query is sent as "".
func BtnSwitch(text, query string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, SwitchInlineQuery: &query}
}

// BtnSwitchCurrent creates an inline query switch button for the current chat.
func BtnSwitchCurrent(text, query string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, SwitchInlineQueryCurrentChat: &query}
}

// BtnCopy creates a copy-to-clipboard button.
func BtnCopy(text, toCopy string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, CopyText: &CopyTextButton{Text: toCopy}}
}

// Keyboard builds inline keyboards fluently. Buttons go to the current row
// until Row closes it.
type Keyboard struct {
	rows    [][]InlineKeyboardButton
	current []InlineKeyboardButton
}

// NewKeyboard creates a new keyboard builder.
func NewKeyboard() *Keyboard {
	return &Keyboard{rows: make([][]InlineKeyboardButton, 0, 4)}
}

// Add appends buttons to the current row.
func (k *Keyboard) Add(buttons ...InlineKeyboardButton) *Keyboard {
	k.current = append(k.current, buttons...)
	return k
}

// Callback appends a callback button to the current row.
func (k *Keyboard) Callback(text, data string) *Keyboard { return k.Add(Btn(text, data)) }

// URL appends a URL button to the current row.
func (k *Keyboard) URL(text, url string) *Keyboard { return k.Add(BtnURL(text, url)) }

// WebApp appends a Web App button to the current row.
func (k *Keyboard) WebApp(text, url string) *Keyboard { return k.Add(BtnWebApp(text, url)) }

// Row closes the current row, then adds buttons as a complete row if any are given.
func (k *Keyboard) Row(buttons ...InlineKeyboardButton) *Keyboard {
	if len(k.current) > 0 {
		k.rows = append(k.rows, k.current)
		k.current = nil
	}
	if len(buttons) > 0 {
		k.rows = append(k.rows, buttons)
	}
	return k
}

// Pagination adds a "« First ‹ Prev n / total Next › Last »" row.
func (k *Keyboard) Pagination(current, total int, prefix string) *Keyboard {
	k.Row()
	if current > 1 {
		k.Callback("« First", prefix+"1")
		k.Callback("‹ Prev", prefix+strconv.Itoa(current-1))
	}
	k.Callback(strconv.Itoa(current)+" / "+strconv.Itoa(total), prefix+"current")
	if current < total {
		k.Callback("Next ›", prefix+strconv.Itoa(current+1))
		k.Callback("Last »", prefix+strconv.Itoa(total))
	}
	return k.Row()
}

// SimplePagination adds a row with only Prev/Next buttons.
func (k *Keyboard) SimplePagination(current, total int, prefix string) *Keyboard {
	k.Row()
	if current > 1 {
		k.Callback("‹ Prev", prefix+strconv.Itoa(current-1))
	}
	if current < total {
		k.Callback("Next ›", prefix+strconv.Itoa(current+1))
	}
	return k.Row()
}

// Confirm adds a Yes/No row.
func (k *Keyboard) Confirm(yesData, noData string) *Keyboard {
	return k.Row(Btn("✅ Yes", yesData), Btn("❌ No", noData))
}

// Back adds a single back button row.
func (k *Keyboard) Back(data string) *Keyboard {
	return k.Row(Btn("« Back", data))
}

// Close adds a single close button row.
func (k *Keyboard) Close(data string) *Keyboard {
	return k.Row(Btn("✖ Close", data))
}

// Build returns the completed InlineKeyboardMarkup, including an open row.
func (k *Keyboard) Build() *InlineKeyboardMarkup {
	rows := append([][]InlineKeyboardButton{}, k.rows...)
	if len(k.current) > 0 {
		rows = append(rows, k.current)
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

// Clear removes every button.
func (k *Keyboard) Clear() *Keyboard {
	k.rows = k.rows[:0]
	k.current = nil
	return k
}

// Empty returns true if keyboard has no buttons.
func (k *Keyboard) Empty() bool {
	return len(k.rows) == 0 && len(k.current) == 0
}

// RowCount returns the number of rows, including an open row.
func (k *Keyboard) RowCount() int {
	return len(k.Build().InlineKeyboard)
}

// AllButtons returns an iterator over all buttons.
func (k *Keyboard) AllButtons() iter.Seq[InlineKeyboardButton] {
	return func(yield func(InlineKeyboardButton) bool) {
		for _, row := range k.Build().InlineKeyboard {
			for _, btn := range row {
				if !yield(btn) {
					return
				}
			}
		}
	}
}

// MarshalJSON implements json.Marshaler.
func (k *Keyboard) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Build())
}

// Quick keyboard builders

// InlineKeyboard creates a keyboard from rows of buttons.
func InlineKeyboard(rows ...[]InlineKeyboardButton) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

// Row creates a row of buttons (for use with InlineKeyboard).
func Row(buttons ...InlineKeyboardButton) []InlineKeyboardButton {
	return buttons
}

// Confirm creates a Yes/No confirmation keyboard.
func Confirm(yesData, noData string) *InlineKeyboardMarkup {
	return NewKeyboard().Confirm(yesData, noData).Build()
}

// Grid creates a keyboard with buttons arranged in rows of columns.
func Grid[T any](items []T, columns int, btnFunc func(T) InlineKeyboardButton) *InlineKeyboardMarkup {
	if columns < 1 {
		columns = 1
	}
	k := NewKeyboard()
	for i, item := range items {
		k.Add(btnFunc(item))
		if (i+1)%columns == 0 {
			k.Row()
		}
	}
	return k.Build()
}

// Button is a label plus its callback data or URL, used by the flowing layouts.
type Button struct {
	Text  string
	Value string
}

// FlowCallbacks lays out callback buttons, starting a new row whenever the
// labels of the current row would exceed maxChars. Over-long labels get their own row.
func FlowCallbacks(buttons []Button, maxChars int) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: flow(buttons, maxChars, func(b Button) InlineKeyboardButton {
		return Btn(b.Text, b.Value)
	})}
}

// FlowURLs is FlowCallbacks for URL buttons.
func FlowURLs(buttons []Button, maxChars int) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: flow(buttons, maxChars, func(b Button) InlineKeyboardButton {
		return BtnURL(b.Text, b.Value)
	})}
}

// ReplyKeyboard lays out text buttons as a persistent, resized reply keyboard.
func ReplyKeyboard(labels []string, maxChars int) *ReplyKeyboardMarkup {
	buttons := make([]Button, len(labels))
	for i, l := range labels {
		buttons[i] = Button{Text: l}
	}
	return &ReplyKeyboardMarkup{
		Keyboard: flow(buttons, maxChars, func(b Button) KeyboardButton {
			return KeyboardButton{Text: b.Text}
		}),
		IsPersistent:   true,
		ResizeKeyboard: true,
	}
}

// RemoveKeyboard hides the reply keyboard.
func RemoveKeyboard(selective bool) *ReplyKeyboardRemove {
	return &ReplyKeyboardRemove{RemoveKeyboard: true, Selective: selective}
}

// NewForceReply asks the client to show a reply box.
func NewForceReply(selective bool, placeholder string) *ForceReply {
	return &ForceReply{ForceReply: true, Selective: selective, InputFieldPlaceholder: placeholder}
}

func flow[B any](buttons []Button, maxChars int, mk func(Button) B) [][]B {
	var (
		rows    [][]B
		row     []B
		rowLen  int
	)
	for _, b := range buttons {
		n := utf8.RuneCountInString(b.Text)
		if n > maxChars {
			if len(row) > 0 {
				rows = append(rows, row)
				row, rowLen = nil, 0
			}
			rows = append(rows, []B{mk(b)})
			continue
		}
		if rowLen+n > maxChars && len(row) > 0 {
			rows = append(rows, row)
			row, rowLen = nil, 0
		}
		row = append(row, mk(b))
		rowLen += n
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}
