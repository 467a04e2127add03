package sender_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/prilive-com/gramsea/internal/testutil"
	"github.com/prilive-com/gramsea/sender"
)

func TestMediaList_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want sender.MediaList
	}{
		{`{"media":"a.jpg"}`, sender.MediaList{"a.jpg"}},
		{`{"media":["a.jpg","b.mp4"]}`, sender.MediaList{"a.jpg", "b.mp4"}},
		{`{"media":""}`, nil},
		{`{"media":null}`, nil},
		{`{}`, nil},
	}
	for _, tt := range tests {
		var target sender.Target
		require.NoError(t, json.Unmarshal([]byte(tt.in), &target), tt.in)
		assert.Equal(t, tt.want, target.Media, tt.in)
	}

	var target sender.Target
	assert.Error(t, json.Unmarshal([]byte(`{"media":42}`), &target))
}

func TestMediaList_YAML(t *testing.T) {
	var single sender.Target
	require.NoError(t, yaml.Unmarshal([]byte("chat_id: 1\nmedia: a.jpg\n"), &single))
	assert.Equal(t, sender.MediaList{"a.jpg"}, single.Media)

	var list sender.Target
	require.NoError(t, yaml.Unmarshal([]byte("chat_id: 1\nmedia:\n  - a.jpg\n  - b.jpg\n"), &list))
	assert.Equal(t, sender.MediaList{"a.jpg", "b.jpg"}, list.Media)

	var bad sender.Target
	assert.Error(t, yaml.Unmarshal([]byte("chat_id: 1\nmedia:\n  k: v\n"), &bad))
}

func TestLoadTargets_YAMLList(t *testing.T) {
	path := testutil.TempFile(t, "targets.yaml", `
- chat_id: 100
  text: "Hello **John**"
- chat_id: "@news"
  media: https://example.com/a.jpg
  reply_markup:
    inline_keyboard:
      - - text: Open
          url: https://example.com
`)

	targets, err := sender.LoadTargets(path)

	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, 100, targets[0].ChatID)
	assert.Equal(t, "Hello **John**", targets[0].Text)
	assert.Equal(t, "@news", targets[1].ChatID)
	assert.Equal(t, sender.MediaList{"https://example.com/a.jpg"}, targets[1].Media)
	assert.NotNil(t, targets[1].ReplyMarkup)
}

func TestLoadTargets_YAMLObject(t *testing.T) {
	path := testutil.TempFile(t, "targets.yml", "targets:\n  - chat_id: 1\n    text: hi\n")

	targets, err := sender.LoadTargets(path)

	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "hi", targets[0].Text)
}

func TestLoadTargets_JSON(t *testing.T) {
	list := testutil.TempFile(t, "list.json", `[{"chat_id":1,"text":"a"},{"chat_id":"@b","media":["x.jpg","y.jpg"]}]`)
	object := testutil.TempFile(t, "object.JSON", `{"targets":[{"chat_id":2,"media":"z.pdf"}]}`)

	fromList, err := sender.LoadTargets(list)
	require.NoError(t, err)
	require.Len(t, fromList, 2)
	assert.Equal(t, float64(1), fromList[0].ChatID)
	assert.Equal(t, sender.MediaList{"x.jpg", "y.jpg"}, fromList[1].Media)

	fromObject, err := sender.LoadTargets(object)
	require.NoError(t, err)
	require.Len(t, fromObject, 1)
	assert.Equal(t, sender.MediaList{"z.pdf"}, fromObject[0].Media)
}

func TestLoadTargets_Errors(t *testing.T) {
	_, err := sender.LoadTargets("/does/not/exist.yaml")
	assert.Error(t, err)

	broken := testutil.TempFile(t, "broken.json", `[{"chat_id":`)
	_, err = sender.LoadTargets(broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), broken)
}

func TestLoadTargets_FeedMassSender(t *testing.T) {
	server, gw := newGateway(t)
	path := testutil.TempFile(t, "targets.json", `[{"chat_id":10,"text":"a"},{"chat_id":20,"text":"b"}]`)
	targets, err := sender.LoadTargets(path)
	require.NoError(t, err)

	mass := gw.Mass()
	require.NoError(t, mass.AddTargets(targets...))
	result, err := mass.Send(t.Context())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"10", "20"}, result.Sent())
	assert.Equal(t, 2, server.CaptureCount())
}
