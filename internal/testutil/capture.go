package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Capture represents a captured HTTP request with timestamp.
type Capture struct {
	Method      string // HTTP method
	Path        string
	APIMethod   string // Bot API method taken from the path
	Query       map[string][]string
	Headers     http.Header
	Body        []byte
	ContentType string
	Timestamp   time.Time
}

// FormFile is a file part of a multipart request.
type FormFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Form is a decoded multipart/form-data body.
type Form struct {
	Fields map[string]string
	Files  map[string]FormFile
}

// IsMultipart reports whether the body is multipart/form-data.
func (c *Capture) IsMultipart() bool {
	return strings.HasPrefix(c.ContentType, "multipart/form-data")
}

// Form decodes a multipart body.
func (c *Capture) Form(t *testing.T) Form {
	t.Helper()
	_, params, err := mime.ParseMediaType(c.ContentType)
	require.NoError(t, err, "invalid content-type")

	form := Form{Fields: map[string]string{}, Files: map[string]FormFile{}}
	reader := multipart.NewReader(bytes.NewReader(c.Body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err, "failed to read multipart body")

		data, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FileName() != "" {
			form.Files[part.FormName()] = FormFile{
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Content:     data,
			}
			continue
		}
		form.Fields[part.FormName()] = string(data)
	}
	return form
}

// AssertPath verifies the request path.
func (c *Capture) AssertPath(t *testing.T, expected string) {
	t.Helper()
	assert.Equal(t, expected, c.Path, "unexpected path")
}

// AssertMethod verifies the HTTP method.
func (c *Capture) AssertMethod(t *testing.T, expected string) {
	t.Helper()
	assert.Equal(t, expected, c.Method, "unexpected method")
}

// AssertAPIMethod verifies the Bot API method.
func (c *Capture) AssertAPIMethod(t *testing.T, expected string) {
	t.Helper()
	assert.Equal(t, expected, c.APIMethod, "unexpected API method")
}

// AssertContentType verifies the Content-Type header contains expected value.
func (c *Capture) AssertContentType(t *testing.T, expected string) {
	t.Helper()
	assert.Contains(t, c.ContentType, expected, "unexpected content-type")
}

// AssertHeader verifies a specific header value.
func (c *Capture) AssertHeader(t *testing.T, key, expected string) {
	t.Helper()
	assert.Equal(t, expected, c.Headers.Get(key), "unexpected header: "+key)
}

// AssertQuery verifies a query parameter value.
func (c *Capture) AssertQuery(t *testing.T, key, expected string) {
	t.Helper()
	values := c.Query[key]
	if len(values) == 0 {
		t.Errorf("query parameter %q not found", key)
		return
	}
	assert.Equal(t, expected, values[0], "unexpected query parameter: "+key)
}

// AssertJSONField verifies a field in the JSON body.
func (c *Capture) AssertJSONField(t *testing.T, field string, expected any) {
	t.Helper()
	body := c.BodyMap(t)
	assert.Equal(t, expected, body[field], "unexpected value for field: "+field)
}

// AssertJSONFieldExists verifies a field exists in the JSON body.
func (c *Capture) AssertJSONFieldExists(t *testing.T, field string) {
	t.Helper()
	assert.Contains(t, c.BodyMap(t), field, "field should exist: "+field)
}

// AssertJSONFieldAbsent verifies a field does NOT exist in the JSON body.
func (c *Capture) AssertJSONFieldAbsent(t *testing.T, field string) {
	t.Helper()
	assert.NotContains(t, c.BodyMap(t), field, "field should be absent: "+field)
}

// AssertJSONFieldNested verifies a nested field in the JSON body.
// Use dot notation with numeric segments for arrays: "media.0.caption",
// "link_preview_options.is_disabled".
func (c *Capture) AssertJSONFieldNested(t *testing.T, path string, expected any) {
	t.Helper()
	got, ok := lookup(c.BodyMap(t), path)
	if !ok {
		t.Errorf("field %q not found", path)
		return
	}
	assert.Equal(t, expected, got, "unexpected value for field: "+path)
}

func lookup(v any, path string) (any, bool) {
	for _, seg := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			v = node[i]
		default:
			return nil, false
		}
	}
	return v, true
}

// BodyJSON decodes the body as JSON into target.
func (c *Capture) BodyJSON(t *testing.T, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(c.Body, target), "failed to decode JSON body")
}

// BodyMap returns the body as a map.
func (c *Capture) BodyMap(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(c.Body, &m), "failed to decode JSON body")
	return m
}

// BodyString returns the body as a string.
func (c *Capture) BodyString() string {
	return string(c.Body)
}

// HasQuery checks if a query parameter exists.
func (c *Capture) HasQuery(key string) bool {
	_, exists := c.Query[key]
	return exists
}

// GetQuery returns the first value of a query parameter.
func (c *Capture) GetQuery(key string) string {
	values := c.Query[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
