package testutil

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
)

// TelegramEnvelope is the standard Telegram API response format.
type TelegramEnvelope struct {
	OK          bool        `json:"ok"`
	Result      any         `json:"result,omitempty"`
	ErrorCode   int         `json:"error_code,omitempty"`
	Description string      `json:"description,omitempty"`
	Parameters  *Parameters `json:"parameters,omitempty"`
}

// Parameters contains optional error parameters (e.g., retry_after).
type Parameters struct {
	RetryAfter      int   `json:"retry_after,omitempty"`
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
}

// ReplyOK writes a successful Telegram API response.
func ReplyOK(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(TelegramEnvelope{
		OK:     true,
		Result: result,
	})
}

// ReplyError writes a Telegram API error response with code as HTTP status.
func ReplyError(w http.ResponseWriter, code int, description string, params *Parameters) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(TelegramEnvelope{
		OK:          false,
		ErrorCode:   code,
		Description: description,
		Parameters:  params,
	})
}

// ReplyRaw writes body verbatim with the given status, for non-JSON replies
// such as proxy error pages.
func ReplyRaw(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ReplyRateLimit writes a 429 rate limit response with retry_after in both JSON and HTTP header.
func ReplyRateLimit(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	ReplyError(w, 429, "Too Many Requests: retry after "+strconv.Itoa(retryAfter), &Parameters{
		RetryAfter: retryAfter,
	})
}

// ReplyRateLimitHeaderOnly writes a 429 rate limit response with retry_after ONLY in HTTP header.
// Useful for testing HTTP header fallback parsing.
func ReplyRateLimitHeaderOnly(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	ReplyError(w, 429, "Too Many Requests: retry after "+strconv.Itoa(retryAfter), nil)
}

// ReplyServerError writes a 5xx server error response.
func ReplyServerError(w http.ResponseWriter, code int, description string) {
	ReplyError(w, code, description, nil)
}

// ReplyBadRequest writes a 400 bad request error.
func ReplyBadRequest(w http.ResponseWriter, description string) {
	ReplyError(w, 400, "Bad Request: "+description, nil)
}

// ReplyForbidden writes a 403 forbidden error (e.g., bot blocked).
func ReplyForbidden(w http.ResponseWriter, description string) {
	ReplyError(w, 403, "Forbidden: "+description, nil)
}

// ReplyNotFound writes a 404 not found error.
func ReplyNotFound(w http.ResponseWriter, description string) {
	ReplyError(w, 404, "Not Found: "+description, nil)
}

// ReplyMessage writes a successful message response.
func ReplyMessage(w http.ResponseWriter, messageID int) {
	ReplyMessageWithChat(w, messageID, TestChatID)
}

// ReplyMessageWithChat writes a successful message response for a specific chat.
func ReplyMessageWithChat(w http.ResponseWriter, messageID int, chatID int64) {
	ReplyOK(w, messageJSON(messageID, chatID))
}

// ReplyMessages writes a successful sendMediaGroup response with one message
// per id.
func ReplyMessages(w http.ResponseWriter, messageIDs ...int) {
	msgs := make([]map[string]any, 0, len(messageIDs))
	for _, id := range messageIDs {
		m := messageJSON(id, TestChatID)
		m["media_group_id"] = "group-1"
		msgs = append(msgs, m)
	}
	ReplyOK(w, msgs)
}

func messageJSON(messageID int, chatID int64) map[string]any {
	return map[string]any{
		"message_id": messageID,
		"date":       1234567890,
		"chat": map[string]any{
			"id":   chatID,
			"type": "private",
		},
		"text": "Test message",
	}
}

// ReplyBool writes a successful boolean response (for setWebhook, etc.).
func ReplyBool(w http.ResponseWriter, result bool) {
	ReplyOK(w, result)
}

// ReplyUser writes a successful getMe response.
func ReplyUser(w http.ResponseWriter) {
	ReplyOK(w, map[string]any{
		"id":         TestBotID,
		"is_bot":     true,
		"first_name": "Test Bot",
		"username":   TestBotUsername,
	})
}

// ReplyWebhookInfo writes a successful getWebhookInfo response.
func ReplyWebhookInfo(w http.ResponseWriter, url string, pendingCount int) {
	ReplyOK(w, map[string]any{
		"url":                    url,
		"has_custom_certificate": false,
		"pending_update_count":   pendingCount,
	})
}

// ReplyChatMember writes a successful getChatMember response.
func ReplyChatMember(w http.ResponseWriter, status string) {
	ReplyOK(w, map[string]any{
		"status": status,
		"user": map[string]any{
			"id":         TestUserID,
			"is_bot":     false,
			"first_name": "Test",
		},
	})
}

// ReplyFile writes a successful getFile response.
func ReplyFile(w http.ResponseWriter, fileID, filePath string, size int64) {
	ReplyOK(w, map[string]any{
		"file_id":        fileID,
		"file_unique_id": "unique-" + fileID,
		"file_size":      size,
		"file_path":      filePath,
	})
}

// ReplyCommands writes a successful getMyCommands response.
func ReplyCommands(w http.ResponseWriter, pairs ...string) {
	cmds := make([]map[string]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		cmds = append(cmds, map[string]string{"command": pairs[i], "description": pairs[i+1]})
	}
	ReplyOK(w, cmds)
}

// ReplyUpdates writes a successful getUpdates response with one text
// message update per id.
func ReplyUpdates(w http.ResponseWriter, updateIDs ...int) {
	updates := make([]map[string]any, 0, len(updateIDs))
	for _, id := range updateIDs {
		updates = append(updates, map[string]any{
			"update_id": id,
			"message":   messageJSON(id, TestChatID),
		})
	}
	ReplyOK(w, updates)
}

// Gate blocks handlers until released and tracks how many are waiting.
// It lets tests observe how many requests are in flight at once.
type Gate struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	arrived  chan struct{}
	release  chan struct{}
	once     sync.Once
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{
		arrived: make(chan struct{}, 1024),
		release: make(chan struct{}),
	}
}

// Wait blocks the calling handler until Release is called.
func (g *Gate) Wait() {
	g.mu.Lock()
	g.inFlight++
	g.peak = max(g.peak, g.inFlight)
	g.mu.Unlock()

	g.arrived <- struct{}{}
	<-g.release

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
}

// Arrived returns a channel receiving one value per handler reaching Wait.
func (g *Gate) Arrived() <-chan struct{} { return g.arrived }

// InFlight returns the number of handlers currently blocked.
func (g *Gate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// Peak returns the highest number of handlers blocked at once.
func (g *Gate) Peak() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.peak
}

// Release opens the gate for every current and future handler.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}
