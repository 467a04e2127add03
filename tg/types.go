package tg

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// ChatID represents a Telegram chat identifier.
// Valid types: an integer id or a non-empty string (numeric id or "@channelusername").
type ChatID = any

// Update represents an incoming update.
type Update struct {
	UpdateID           int             `json:"update_id"`
	Message            *Message        `json:"message,omitempty"`
	EditedMessage      *Message        `json:"edited_message,omitempty"`
	ChannelPost        *Message        `json:"channel_post,omitempty"`
	EditedChannelPost  *Message        `json:"edited_channel_post,omitempty"`
	CallbackQuery      *CallbackQuery  `json:"callback_query,omitempty"`
	InlineQuery        json.RawMessage `json:"inline_query,omitempty"`
	ChosenInlineResult json.RawMessage `json:"chosen_inline_result,omitempty"`
	ShippingQuery      json.RawMessage `json:"shipping_query,omitempty"`
	PreCheckoutQuery   json.RawMessage `json:"pre_checkout_query,omitempty"`
	Poll               json.RawMessage `json:"poll,omitempty"`
	PollAnswer         json.RawMessage `json:"poll_answer,omitempty"`
	MyChatMember       json.RawMessage `json:"my_chat_member,omitempty"`
	ChatMember         json.RawMessage `json:"chat_member,omitempty"`
	ChatJoinRequest    json.RawMessage `json:"chat_join_request,omitempty"`
}

// ParseUpdate decodes a webhook or getUpdates payload.
func ParseUpdate(data []byte) (*Update, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("gramsea: invalid update json: %w", err)
	}
	return &u, nil
}

// Type returns the name of the populated update field, or "unknown".
func (u *Update) Type() string {
	switch {
	case u.Message != nil:
		return "message"
	case u.EditedMessage != nil:
		return "edited_message"
	case u.ChannelPost != nil:
		return "channel_post"
	case u.EditedChannelPost != nil:
		return "edited_channel_post"
	case u.CallbackQuery != nil:
		return "callback_query"
	case len(u.InlineQuery) > 0:
		return "inline_query"
	case len(u.ChosenInlineResult) > 0:
		return "chosen_inline_result"
	case len(u.ShippingQuery) > 0:
		return "shipping_query"
	case len(u.PreCheckoutQuery) > 0:
		return "pre_checkout_query"
	case len(u.Poll) > 0:
		return "poll"
	case len(u.PollAnswer) > 0:
		return "poll_answer"
	case len(u.MyChatMember) > 0:
		return "my_chat_member"
	case len(u.ChatMember) > 0:
		return "chat_member"
	case len(u.ChatJoinRequest) > 0:
		return "chat_join_request"
	}
	return "unknown"
}

// AnyMessage returns the first message-like payload, including the message
// attached to a callback query.
func (u *Update) AnyMessage() *Message {
	switch {
	case u.Message != nil:
		return u.Message
	case u.EditedMessage != nil:
		return u.EditedMessage
	case u.ChannelPost != nil:
		return u.ChannelPost
	case u.EditedChannelPost != nil:
		return u.EditedChannelPost
	case u.CallbackQuery != nil:
		return u.CallbackQuery.Message
	}
	return nil
}

// ChatID returns the chat of AnyMessage, or 0.
func (u *Update) ChatID() int64 {
	if m := u.AnyMessage(); m != nil && m.Chat != nil {
		return m.Chat.ID
	}
	return 0
}

// From returns the sender of the message or callback query.
func (u *Update) From() *User {
	if u.CallbackQuery != nil {
		return u.CallbackQuery.From
	}
	if m := u.AnyMessage(); m != nil {
		return m.From
	}
	return nil
}

// Text returns text or caption of AnyMessage.
func (u *Update) Text() string {
	if m := u.AnyMessage(); m != nil {
		return m.TextOrCaption()
	}
	return ""
}

// CallbackQuery represents an incoming callback query from an inline keyboard.
type CallbackQuery struct {
	ID              string   `json:"id"`
	From            *User    `json:"from"`
	Message         *Message `json:"message,omitempty"`
	InlineMessageID string   `json:"inline_message_id,omitempty"`
	ChatInstance    string   `json:"chat_instance"`
	Data            string   `json:"data,omitempty"`
}

// Message represents a Telegram message.
type Message struct {
	MessageID        int                   `json:"message_id"`
	MessageThreadID  int                   `json:"message_thread_id,omitempty"`
	From             *User                 `json:"from,omitempty"`
	SenderChat       *Chat                 `json:"sender_chat,omitempty"`
	Date             int64                 `json:"date"`
	EditDate         int64                 `json:"edit_date,omitempty"`
	Chat             *Chat                 `json:"chat"`
	ReplyToMessage   *Message              `json:"reply_to_message,omitempty"`
	ForwardOrigin    json.RawMessage       `json:"forward_origin,omitempty"`
	MediaGroupID     string                `json:"media_group_id,omitempty"`
	Text             string                `json:"text,omitempty"`
	Entities         []MessageEntity       `json:"entities,omitempty"`
	Caption          string                `json:"caption,omitempty"`
	CaptionEntities  []MessageEntity       `json:"caption_entities,omitempty"`
	Photo            []PhotoSize           `json:"photo,omitempty"`
	Video            *File                 `json:"video,omitempty"`
	Audio            *File                 `json:"audio,omitempty"`
	Document         *File                 `json:"document,omitempty"`
	Animation        *File                 `json:"animation,omitempty"`
	Voice            *File                 `json:"voice,omitempty"`
	VideoNote        *File                 `json:"video_note,omitempty"`
	Sticker          *File                 `json:"sticker,omitempty"`
	Location         *Location             `json:"location,omitempty"`
	Contact          *Contact              `json:"contact,omitempty"`
	NewChatMembers   []User                `json:"new_chat_members,omitempty"`
	LeftChatMember   *User                 `json:"left_chat_member,omitempty"`
	NewChatTitle     string                `json:"new_chat_title,omitempty"`
	PinnedMessage    *Message              `json:"pinned_message,omitempty"`
	GroupChatCreated bool                  `json:"group_chat_created,omitempty"`
	ReplyMarkup      *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// Time returns the send date.
func (m *Message) Time() time.Time { return time.Unix(m.Date, 0) }

// ChatID returns the chat id or 0.
func (m *Message) ChatID() int64 {
	if m.Chat == nil {
		return 0
	}
	return m.Chat.ID
}

// TextOrCaption returns Text, or Caption for media messages.
func (m *Message) TextOrCaption() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// IsReply reports whether the message replies to another one.
func (m *Message) IsReply() bool { return m.ReplyToMessage != nil }

// IsForwarded reports whether the message was forwarded.
func (m *Message) IsForwarded() bool { return len(m.ForwardOrigin) > 0 }

// LargestPhoto returns the biggest photo size, or nil.
func (m *Message) LargestPhoto() *PhotoSize {
	if len(m.Photo) == 0 {
		return nil
	}
	return &m.Photo[len(m.Photo)-1]
}

// MediaType returns the attached media kind, or "" for plain messages.
func (m *Message) MediaType() string {
	switch {
	case len(m.Photo) > 0:
		return string(MediaPhoto)
	case m.Video != nil:
		return string(MediaVideo)
	case m.Audio != nil:
		return string(MediaAudio)
	case m.Document != nil:
		return string(MediaDocument)
	case m.Animation != nil:
		return string(MediaAnimation)
	case m.Voice != nil:
		return string(MediaVoice)
	case m.VideoNote != nil:
		return "video_note"
	case m.Sticker != nil:
		return "sticker"
	}
	return ""
}

// HasMedia reports any attached media.
func (m *Message) HasMedia() bool { return m.MediaType() != "" }

// IsServiceMessage reports membership, title and pin events.
func (m *Message) IsServiceMessage() bool {
	return len(m.NewChatMembers) > 0 || m.LeftChatMember != nil || m.NewChatTitle != "" ||
		m.PinnedMessage != nil || m.GroupChatCreated
}

// IsCommand reports whether the text starts with a bot command.
func (m *Message) IsCommand() bool {
	return strings.HasPrefix(m.Text, "/")
}

// Command returns the command without the leading slash and @botname suffix.
func (m *Message) Command() string {
	if !m.IsCommand() {
		return ""
	}
	cmd, _, _ := strings.Cut(m.Text[1:], " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}

// CommandArgs returns the text after the command, trimmed.
func (m *Message) CommandArgs() string {
	if !m.IsCommand() {
		return ""
	}
	_, args, _ := strings.Cut(m.Text, " ")
	return strings.TrimSpace(args)
}

// CommandArgsList splits CommandArgs on whitespace.
func (m *Message) CommandArgsList() []string {
	return strings.Fields(m.CommandArgs())
}

// User represents a Telegram user or bot.
type User struct {
	ID                      int64  `json:"id"`
	IsBot                   bool   `json:"is_bot"`
	FirstName               string `json:"first_name"`
	LastName                string `json:"last_name,omitempty"`
	Username                string `json:"username,omitempty"`
	LanguageCode            string `json:"language_code,omitempty"`
	IsPremium               bool   `json:"is_premium,omitempty"`
	CanJoinGroups           bool   `json:"can_join_groups,omitempty"`
	CanReadAllGroupMessages bool   `json:"can_read_all_group_messages,omitempty"`
	SupportsInlineQueries   bool   `json:"supports_inline_queries,omitempty"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Mention returns "@username", or "" when the user has none.
func (u *User) Mention() string {
	if u.Username == "" {
		return ""
	}
	return "@" + u.Username
}

// MentionHTML links to the user profile by id. Uses FullName when text is empty.
func (u *User) MentionHTML(text string) string {
	if text == "" {
		text = u.FullName()
	}
	return `<a href="tg://user?id=` + strconv.FormatInt(u.ID, 10) + `">` + html.EscapeString(text) + `</a>`
}

// Chat represents a Telegram chat.
type Chat struct {
	ID                  int64  `json:"id"`
	Type                string `json:"type"`
	Title               string `json:"title,omitempty"`
	Username            string `json:"username,omitempty"`
	FirstName           string `json:"first_name,omitempty"`
	LastName            string `json:"last_name,omitempty"`
	IsForum             bool   `json:"is_forum,omitempty"`
	Bio                 string `json:"bio,omitempty"`
	Description         string `json:"description,omitempty"`
	InviteLink          string `json:"invite_link,omitempty"`
	LinkedChatID        int64  `json:"linked_chat_id,omitempty"`
	SlowModeDelay       int    `json:"slow_mode_delay,omitempty"`
	HasProtectedContent bool   `json:"has_protected_content,omitempty"`
}

func (c *Chat) IsPrivate() bool    { return ChatType(c.Type) == ChatTypePrivate }
func (c *Chat) IsGroup() bool      { return ChatType(c.Type) == ChatTypeGroup }
func (c *Chat) IsSupergroup() bool { return ChatType(c.Type) == ChatTypeSupergroup }
func (c *Chat) IsChannel() bool    { return ChatType(c.Type) == ChatTypeChannel }

// IsAnyGroup reports group or supergroup.
func (c *Chat) IsAnyGroup() bool { return ChatType(c.Type).IsGroup() }

// Name returns the title for groups and channels, the full name otherwise.
func (c *Chat) Name() string {
	if c.Title != "" {
		return c.Title
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// MessageEntity represents a special entity in a text message.
type MessageEntity struct {
	Type     string `json:"type"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
	URL      string `json:"url,omitempty"`
	User     *User  `json:"user,omitempty"`
	Language string `json:"language,omitempty"`
}

// PhotoSize represents one size of a photo or thumbnail.
type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int64  `json:"file_size,omitempty"`
}

// File covers the common fields of every downloadable attachment and of getFile.
type File struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileSize     int64  `json:"file_size,omitempty"`
	FilePath     string `json:"file_path,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	Duration     int    `json:"duration,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// Location represents a point on the map.
type Location struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Contact represents a phone contact.
type Contact struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
}

// ChatMember carries the membership status returned by getChatMember.
type ChatMember struct {
	Status string `json:"status"`
	User   *User  `json:"user"`
}

// BotCommand is one entry of the bot command menu.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// WebhookInfo describes the current webhook configuration.
type WebhookInfo struct {
	URL                  string   `json:"url"`
	HasCustomCertificate bool     `json:"has_custom_certificate"`
	PendingUpdateCount   int      `json:"pending_update_count"`
	IPAddress            string   `json:"ip_address,omitempty"`
	LastErrorDate        int64    `json:"last_error_date,omitempty"`
	LastErrorMessage     string   `json:"last_error_message,omitempty"`
	MaxConnections       int      `json:"max_connections,omitempty"`
	AllowedUpdates       []string `json:"allowed_updates,omitempty"`
}
