package tg

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ResponseParameters contains information about why a request was unsuccessful.
type ResponseParameters struct {
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
	RetryAfter      int   `json:"retry_after,omitempty"`
}

// Response is the Bot API envelope plus transport metadata.
// A response whose body was not JSON has Synthetic set, OK false and the
// undecoded body in Raw.
type Response struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Description string              `json:"description,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`

	HTTPStatus int         `json:"http_code,omitempty"`
	Raw        []byte      `json:"-"`
	Header     http.Header `json:"-"`
	Synthetic  bool        `json:"-"`
}

// Code returns error_code, falling back to the HTTP status, then 0.
func (r *Response) Code() int {
	if r == nil {
		return 0
	}
	if r.ErrorCode != 0 {
		return r.ErrorCode
	}
	return r.HTTPStatus
}

// Message returns the description or "API error" when none was sent.
func (r *Response) Message() string {
	if r == nil || r.Description == "" {
		return "API error"
	}
	return r.Description
}

// RetryAfter reads parameters.retry_after, then the Retry-After header.
func (r *Response) RetryAfter() time.Duration {
	if r == nil {
		return 0
	}
	if r.Parameters != nil && r.Parameters.RetryAfter > 0 {
		return time.Duration(r.Parameters.RetryAfter) * time.Second
	}
	if v := r.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

// MigrateToChatID returns the supergroup id a group was migrated to, if any.
func (r *Response) MigrateToChatID() int64 {
	if r == nil || r.Parameters == nil {
		return 0
	}
	return r.Parameters.MigrateToChatID
}

// Err converts a failed response into a classified *APIError. Returns nil when OK.
func (r *Response) Err(method string) error {
	if r == nil || r.OK {
		return nil
	}
	e := NewAPIError(method, r.Code(), r.Message())
	e.RetryAfter = r.RetryAfter()
	e.MigrateToChatID = r.MigrateToChatID()
	e.Response = r
	return e
}

// Decode unmarshals Result into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(r.Result) == 0 {
		return fmt.Errorf("gramsea: empty result")
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("gramsea: decode result: %w", err)
	}
	return nil
}

// DecodeMessage decodes Result as a single message.
func (r *Response) DecodeMessage() (*Message, error) {
	var msg Message
	if err := r.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeMessages decodes Result as a list of messages (sendMediaGroup).
func (r *Response) DecodeMessages() ([]Message, error) {
	var msgs []Message
	if err := r.Decode(&msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
