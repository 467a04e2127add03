package tg

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DeepLinkBase is the host of t.me links.
const DeepLinkBase = "https://t.me/"

var startParamPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// StartLink returns t.me/<bot>?start=<param>. An empty param yields the bare bot link.
func StartLink(botUsername, param string) string {
	link := ChatLink(botUsername)
	if param != "" {
		link += "?start=" + url.QueryEscape(param)
	}
	return link
}

// StartGroupLink returns a link that adds the bot to a group.
func StartGroupLink(botUsername, param string) string {
	return addLink(botUsername, "startgroup", param)
}

// StartChannelLink returns a link that adds the bot to a channel.
func StartChannelLink(botUsername, param string) string {
	return addLink(botUsername, "startchannel", param)
}

func addLink(botUsername, key, param string) string {
	link := ChatLink(botUsername) + "?" + key
	if param != "" {
		link += "=" + url.QueryEscape(param)
	}
	return link
}

// ChatLink returns the public link of a user, bot, group or channel.
func ChatLink(username string) string {
	return DeepLinkBase + strings.TrimLeft(username, "@")
}

// MessageLink returns the link of a message in a public chat.
func MessageLink(username string, messageID int) string {
	return ChatLink(username) + "/" + strconv.Itoa(messageID)
}

// PrivateMessageLink returns the t.me/c/ link of a message in a private
// supergroup or channel. The -100 prefix of the chat id is stripped.
func PrivateMessageLink(chatID int64, messageID int) string {
	if chatID < 0 {
		chatID = -chatID
	}
	id := strconv.FormatInt(chatID, 10)
	id = strings.TrimPrefix(id, "100")
	return DeepLinkBase + "c/" + id + "/" + strconv.Itoa(messageID)
}

// ShareLink returns a share dialog link for u with optional text.
func ShareLink(u, text string) string {
	link := DeepLinkBase + "share/url?url=" + url.QueryEscape(u)
	if text != "" {
		link += "&text=" + url.QueryEscape(text)
	}
	return link
}

// ParseStartParam extracts the start parameter from "/start <param>",
// "/start=<param>" or a start, startgroup or startchannel deep link.
func ParseStartParam(input string) (string, bool) {
	if rest, ok := strings.CutPrefix(input, "/start"); ok {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return "", false
		}
		return strings.TrimPrefix(rest, "="), true
	}
	u, err := url.Parse(input)
	if err != nil || u.RawQuery == "" {
		return "", false
	}
	q := u.Query()
	for _, key := range []string{"start", "startgroup", "startchannel"} {
		if v := q.Get(key); v != "" {
			return v, true
		}
	}
	return "", false
}

// ValidStartParam reports whether param may be used in a start link.
func ValidStartParam(param string) bool {
	return len(param) <= MaxStartParam && startParamPattern.MatchString(param)
}

// ReferralCode encodes id as URL-safe base64, optionally prefixed by "prefix_".
func ReferralCode(id, prefix string) string {
	code := base64.RawURLEncoding.EncodeToString([]byte(id))
	if prefix != "" {
		code = prefix + "_" + code
	}
	return code
}

// DecodeReferralCode reverses ReferralCode.
func DecodeReferralCode(code, prefix string) (string, error) {
	if prefix != "" {
		code = strings.TrimPrefix(code, prefix+"_")
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(code, "="))
	if err != nil {
		return "", NewValidationError("referral_code", err.Error())
	}
	return string(b), nil
}
