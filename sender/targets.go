package sender

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prilive-com/gramsea/tg"
)

// Target is one independent message of a mass send.
type Target struct {
	ChatID tg.ChatID `json:"chat_id" yaml:"chat_id"`
	// Text is lightweight markdown, converted to HTML when sent.
	Text  string    `json:"text,omitempty" yaml:"text,omitempty"`
	Media MediaList `json:"media,omitempty" yaml:"media,omitempty"`
	// ReplyMarkup accepts the same values as the builders' Keyboard setter,
	// plus a decoded JSON or YAML object.
	ReplyMarkup any `json:"reply_markup,omitempty" yaml:"reply_markup,omitempty"`
}

// MediaList is a list of media references. It decodes from a single string
// as well as from a list.
type MediaList []string

// UnmarshalJSON accepts a string or an array of strings.
func (l *MediaList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = single(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("media: expected string or list of strings: %w", err)
	}
	*l = list
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (l *MediaList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*l = single(value.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*l = list
		return nil
	default:
		return fmt.Errorf("media: line %d: expected string or list of strings", value.Line)
	}
}

func single(s string) MediaList {
	if s == "" {
		return nil
	}
	return MediaList{s}
}

// LoadTargets reads targets from a YAML or JSON file. A .json extension
// selects JSON, anything else is parsed as YAML. The file holds either a
// list of targets or an object with a "targets" list.
func LoadTargets(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	var targets []Target
	if strings.EqualFold(filepath.Ext(path), ".json") {
		targets, err = decodeJSONTargets(data)
	} else {
		targets, err = decodeYAMLTargets(data)
	}
	if err != nil {
		return nil, fmt.Errorf("load targets %s: %w", path, err)
	}
	return targets, nil
}

type targetFile struct {
	Targets []Target `json:"targets" yaml:"targets"`
}

func decodeJSONTargets(data []byte) ([]Target, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var targets []Target
		err := json.Unmarshal(trimmed, &targets)
		return targets, err
	}
	var file targetFile
	err := json.Unmarshal(trimmed, &file)
	return file.Targets, err
}

func decodeYAMLTargets(data []byte) ([]Target, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var targets []Target
		err := doc.Decode(&targets)
		return targets, err
	}
	var file targetFile
	err := doc.Decode(&file)
	return file.Targets, err
}

// normalizeChatID turns decoded numbers into int64 so that ids read from
// JSON keep their integer form.
func normalizeChatID(id tg.ChatID) tg.ChatID {
	switch v := id.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int64(v)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		return v.String()
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v)
		}
	}
	return id
}

// chatIDString renders a destination for the result lists.
func chatIDString(id tg.ChatID) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
