package transport_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/gramsea/internal/testutil"
	"github.com/prilive-com/gramsea/internal/transport"
	"github.com/prilive-com/gramsea/tg"
)

func TestIsLocalFile(t *testing.T) {
	path := testutil.TempFile(t, "doc.pdf", "%PDF")

	assert.True(t, transport.IsLocalFile(path))
	assert.False(t, transport.IsLocalFile(t.TempDir()), "directories are not uploads")
	assert.False(t, transport.IsLocalFile(path+".missing"))
	assert.False(t, transport.IsLocalFile("https://example.com/doc.pdf"))
	assert.False(t, transport.IsLocalFile("file://"+path))
	assert.False(t, transport.IsLocalFile(""))
	assert.False(t, transport.IsLocalFile(42))
}

func TestHasLocalFile(t *testing.T) {
	path := testutil.TempFile(t, "a.mp3", "ID3")

	assert.True(t, transport.HasLocalFile(map[string]any{"chat_id": 1, "audio": path}))
	assert.False(t, transport.HasLocalFile(map[string]any{"chat_id": 1, "audio": "AgADBAAD"}))
	assert.False(t, transport.HasLocalFile(nil))
}

func TestFormValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", "hello"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"int", 42, "42"},
		{"int64", int64(-100123), "-100123"},
		{"float", 1.25, "1.25"},
		{"raw json", json.RawMessage(`{"a":1}`), `{"a":1}`},
		{"parse mode", tg.ParseModeHTML, "HTML"},
		{"slice", []int{1, 2}, "[1,2]"},
		{"map", map[string]bool{"is_disabled": true}, `{"is_disabled":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transport.FormValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
