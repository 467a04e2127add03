package sender

import (
	"context"
	"errors"
	"io"
	"slices"

	"github.com/prilive-com/gramsea/internal/validate"
	"github.com/prilive-com/gramsea/tg"
)

// WebhookOptions are the optional setWebhook parameters.
type WebhookOptions struct {
	SecretToken        string
	IPAddress          string
	MaxConnections     int
	AllowedUpdates     []string
	DropPendingUpdates bool
}

// SetWebhook registers url as the webhook. The URL must use https.
func (g *Gateway) SetWebhook(ctx context.Context, url string, opts WebhookOptions) error {
	if err := validate.WebhookURL(url); err != nil {
		return err
	}
	params := map[string]any{"url": url}
	if opts.SecretToken != "" {
		params["secret_token"] = opts.SecretToken
	}
	if opts.IPAddress != "" {
		params["ip_address"] = opts.IPAddress
	}
	if opts.MaxConnections > 0 {
		params["max_connections"] = opts.MaxConnections
	}
	if opts.AllowedUpdates != nil {
		params["allowed_updates"] = opts.AllowedUpdates
	}
	if opts.DropPendingUpdates {
		params["drop_pending_updates"] = true
	}
	_, err := g.Invoke(ctx, "setWebhook", params)
	return err
}

// DeleteWebhook removes the webhook.
func (g *Gateway) DeleteWebhook(ctx context.Context, dropPendingUpdates bool) error {
	_, err := g.Invoke(ctx, "deleteWebhook", map[string]any{
		"drop_pending_updates": dropPendingUpdates,
	})
	return err
}

// GetWebhookInfo returns the current webhook status.
func (g *Gateway) GetWebhookInfo(ctx context.Context) (*tg.WebhookInfo, error) {
	resp, err := g.InvokeGet(ctx, "getWebhookInfo", nil)
	if err != nil {
		return nil, err
	}
	var info tg.WebhookInfo
	if err := resp.Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Chat member statuses.
const (
	MemberCreator       = "creator"
	MemberAdministrator = "administrator"
	MemberMember        = "member"
	MemberRestricted    = "restricted"
	MemberLeft          = "left"
	MemberKicked        = "kicked"
)

// ChatMemberStatus returns the status of userID in chatID.
func (g *Gateway) ChatMemberStatus(ctx context.Context, chatID tg.ChatID, userID int64) (string, error) {
	if err := validate.Destination(chatID); err != nil {
		return "", err
	}
	member, err := Call[*tg.ChatMember](ctx, g, "getChatMember", map[string]any{
		"chat_id": chatID,
		"user_id": userID,
	})
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", nil
	}
	return member.Status, nil
}

// IsChatMember reports whether userID belongs to chatID, restricted members
// included.
func (g *Gateway) IsChatMember(ctx context.Context, chatID tg.ChatID, userID int64) (bool, error) {
	return g.hasStatus(ctx, chatID, userID, MemberCreator, MemberAdministrator, MemberMember, MemberRestricted)
}

// IsChatAdmin reports whether userID administers chatID.
func (g *Gateway) IsChatAdmin(ctx context.Context, chatID tg.ChatID, userID int64) (bool, error) {
	return g.hasStatus(ctx, chatID, userID, MemberCreator, MemberAdministrator)
}

// IsChatCreator reports whether userID owns chatID.
func (g *Gateway) IsChatCreator(ctx context.Context, chatID tg.ChatID, userID int64) (bool, error) {
	return g.hasStatus(ctx, chatID, userID, MemberCreator)
}

func (g *Gateway) hasStatus(ctx context.Context, chatID tg.ChatID, userID int64, statuses ...string) (bool, error) {
	status, err := g.ChatMemberStatus(ctx, chatID, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(statuses, status), nil
}

// Chat actions accepted by sendChatAction.
const (
	ActionTyping          = "typing"
	ActionUploadPhoto     = "upload_photo"
	ActionRecordVideo     = "record_video"
	ActionUploadVideo     = "upload_video"
	ActionRecordVoice     = "record_voice"
	ActionUploadVoice     = "upload_voice"
	ActionUploadDocument  = "upload_document"
	ActionChooseSticker   = "choose_sticker"
	ActionFindLocation    = "find_location"
	ActionRecordVideoNote = "record_video_note"
	ActionUploadVideoNote = "upload_video_note"
)

var chatActions = []string{
	ActionTyping, ActionUploadPhoto, ActionRecordVideo, ActionUploadVideo,
	ActionRecordVoice, ActionUploadVoice, ActionUploadDocument, ActionChooseSticker,
	ActionFindLocation, ActionRecordVideoNote, ActionUploadVideoNote,
}

// SendChatAction shows a status such as "typing" in chatID.
func (g *Gateway) SendChatAction(ctx context.Context, chatID tg.ChatID, action string) error {
	if err := validate.Destination(chatID); err != nil {
		return err
	}
	if err := validate.OneOf("action", action, chatActions...); err != nil {
		return err
	}
	_, err := g.Invoke(ctx, "sendChatAction", map[string]any{
		"chat_id": chatID,
		"action":  action,
	})
	return err
}

// SendTyping shows the typing status in chatID.
func (g *Gateway) SendTyping(ctx context.Context, chatID tg.ChatID) error {
	return g.SendChatAction(ctx, chatID, ActionTyping)
}

// ErrNoFilePath is returned when getFile reports no path, usually because
// the file is larger than the download limit.
var ErrNoFilePath = errors.New("gramsea: file has no download path")

// GetFile returns the metadata of a stored file.
func (g *Gateway) GetFile(ctx context.Context, fileID string) (*tg.File, error) {
	if err := validate.Required("file_id", fileID, "file id is required"); err != nil {
		return nil, err
	}
	return Call[*tg.File](ctx, g, "getFile", map[string]any{"file_id": fileID})
}

// GetFileURL returns the download URL of a stored file. The URL contains
// the bot token and must not be shared.
func (g *Gateway) GetFileURL(ctx context.Context, fileID string) (string, error) {
	file, err := g.GetFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	if file == nil || file.FilePath == "" {
		return "", ErrNoFilePath
	}
	return g.fileBase + file.FilePath, nil
}

// DownloadFile copies a stored file into w and returns the bytes written.
func (g *Gateway) DownloadFile(ctx context.Context, fileID string, w io.Writer) (int64, error) {
	url, err := g.GetFileURL(ctx, fileID)
	if err != nil {
		return 0, err
	}
	return g.downloads.Download(ctx, url, w)
}

// CommandScope selects which users see a command list.
type CommandScope struct {
	Type   string    `json:"type"`
	ChatID tg.ChatID `json:"chat_id,omitempty"`
	UserID int64     `json:"user_id,omitempty"`
}

// CommandOptions narrow a command list to a scope and language.
type CommandOptions struct {
	Scope        *CommandScope
	LanguageCode string
}

func (o CommandOptions) apply(params map[string]any) map[string]any {
	if o.Scope != nil {
		params["scope"] = o.Scope
	}
	if o.LanguageCode != "" {
		params["language_code"] = o.LanguageCode
	}
	return params
}

// SetCommands replaces the bot command menu.
func (g *Gateway) SetCommands(ctx context.Context, commands []tg.BotCommand, opts CommandOptions) error {
	if len(commands) > tg.MaxBotCommands {
		return validate.Newf("commands", "at most %d commands allowed, got %d", tg.MaxBotCommands, len(commands))
	}
	for _, c := range commands {
		if err := validate.Command(c.Command, c.Description); err != nil {
			return err
		}
	}
	_, err := g.Invoke(ctx, "setMyCommands", opts.apply(map[string]any{"commands": commands}))
	return err
}

// DeleteCommands removes the command menu for the scope.
func (g *Gateway) DeleteCommands(ctx context.Context, opts CommandOptions) error {
	_, err := g.Invoke(ctx, "deleteMyCommands", opts.apply(map[string]any{}))
	return err
}

// GetCommands returns the command menu for the scope.
func (g *Gateway) GetCommands(ctx context.Context, opts CommandOptions) ([]tg.BotCommand, error) {
	return Call[[]tg.BotCommand](ctx, g, "getMyCommands", opts.apply(map[string]any{}))
}
