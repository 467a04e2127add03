package tg

import (
	"fmt"
	"strconv"
	"strings"
)

// CallbackSeparator joins the action and parameters of packed callback data.
const CallbackSeparator = ":"

const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// CallbackData is packed "action:param:param" button data.
type CallbackData string

// EncodeCallback packs an action and its parameters. It fails when the result
// exceeds MaxCallbackData bytes.
func EncodeCallback(action string, params ...any) (CallbackData, error) {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, action)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	data := CallbackData(strings.Join(parts, CallbackSeparator))
	if !data.Valid() {
		return data, NewValidationError("callback_data",
			fmt.Sprintf("exceeds %d bytes (%d)", MaxCallbackData, len(data)))
	}
	return data, nil
}

// CompactCallback is EncodeCallback with non-negative integers written in base62.
func CompactCallback(action string, params ...any) (CallbackData, error) {
	enc := make([]any, len(params))
	for i, p := range params {
		switch v := p.(type) {
		case int:
			if v >= 0 {
				enc[i] = EncodeBase62(uint64(v))
				continue
			}
		case int64:
			if v >= 0 {
				enc[i] = EncodeBase62(uint64(v))
				continue
			}
		case uint64:
			enc[i] = EncodeBase62(v)
			continue
		}
		enc[i] = p
	}
	return EncodeCallback(action, enc...)
}

// Parts splits the data into action followed by parameters.
func (d CallbackData) Parts() []string {
	return strings.Split(string(d), CallbackSeparator)
}

// Action returns the first segment.
func (d CallbackData) Action() string {
	return d.Parts()[0]
}

// Param returns the i-th parameter after the action.
func (d CallbackData) Param(i int) (string, bool) {
	parts := d.Parts()
	if i < 0 || i+1 >= len(parts) {
		return "", false
	}
	return parts[i+1], true
}

// IntParam parses the i-th parameter as a decimal integer.
func (d CallbackData) IntParam(i int) (int64, error) {
	s, ok := d.Param(i)
	if !ok {
		return 0, NewValidationError("callback_data", fmt.Sprintf("missing parameter %d", i))
	}
	return strconv.ParseInt(s, 10, 64)
}

// Base62Param decodes the i-th parameter written by CompactCallback.
func (d CallbackData) Base62Param(i int) (uint64, error) {
	s, ok := d.Param(i)
	if !ok {
		return 0, NewValidationError("callback_data", fmt.Sprintf("missing parameter %d", i))
	}
	return DecodeBase62(s)
}

// Named maps parameters to names. Extra parameters are stored as param_0, param_1...
func (d CallbackData) Named(names ...string) map[string]string {
	parts := d.Parts()
	out := map[string]string{"action": parts[0]}
	params := parts[1:]
	for i, name := range names {
		if i < len(params) {
			out[name] = params[i]
		}
	}
	for i := len(names); i < len(params); i++ {
		out["param_"+strconv.Itoa(i-len(names))] = params[i]
	}
	return out
}

// Is reports whether the action equals action.
func (d CallbackData) Is(action string) bool { return d.Action() == action }

// HasPrefix reports whether the data is prefix itself or starts with "prefix:".
func (d CallbackData) HasPrefix(prefix string) bool {
	return string(d) == prefix || strings.HasPrefix(string(d), prefix+CallbackSeparator)
}

// Valid reports whether the data fits the callback_data limit.
func (d CallbackData) Valid() bool { return len(d) <= MaxCallbackData }

// Remaining returns the number of bytes still available.
func (d CallbackData) Remaining() int { return max(0, MaxCallbackData-len(d)) }

// EncodeBase62 writes n using 0-9A-Za-z.
func EncodeBase62(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [11]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = base62Chars[n%62]
		n /= 62
	}
	return string(buf[i:])
}

// DecodeBase62 is the inverse of EncodeBase62.
func DecodeBase62(s string) (uint64, error) {
	if s == "" {
		return 0, NewValidationError("base62", "empty string")
	}
	var n uint64
	for _, c := range []byte(s) {
		idx := strings.IndexByte(base62Chars, c)
		if idx < 0 {
			return 0, NewValidationError("base62", fmt.Sprintf("invalid character %q", c))
		}
		n = n*62 + uint64(idx)
	}
	return n, nil
}
