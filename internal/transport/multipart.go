package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/prilive-com/gramsea/tg"
)

// IsLocalFile reports whether v is a string naming an existing regular file.
// URLs and file ids never qualify.
func IsLocalFile(v any) bool {
	s, ok := v.(string)
	if !ok || s == "" || strings.Contains(s, "://") {
		return false
	}
	info, err := os.Stat(s)
	return err == nil && info.Mode().IsRegular()
}

// HasLocalFile reports whether any parameter value names a local file.
func HasLocalFile(params map[string]any) bool {
	for _, v := range params {
		if IsLocalFile(v) {
			return true
		}
	}
	return false
}

// multipartEncoder writes parameters as multipart/form-data.
type multipartEncoder struct {
	w *multipart.Writer
}

func newMultipartEncoder(w io.Writer) *multipartEncoder {
	return &multipartEncoder{w: multipart.NewWriter(w)}
}

// ContentType returns the Content-Type header value including boundary.
func (e *multipartEncoder) ContentType() string {
	return e.w.FormDataContentType()
}

func (e *multipartEncoder) Close() error {
	return e.w.Close()
}

// Encode writes every parameter in key order. Local files become file parts
// named after their key and are streamed from disk.
func (e *multipartEncoder) Encode(params map[string]any) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		v := params[key]
		if v == nil {
			continue
		}
		if IsLocalFile(v) {
			if err := e.writeFile(key, v.(string)); err != nil {
				return fmt.Errorf("file %s: %w", key, err)
			}
			continue
		}
		value, err := FormValue(v)
		if err != nil {
			return fmt.Errorf("param %s: %w", key, err)
		}
		if err := e.w.WriteField(key, value); err != nil {
			return fmt.Errorf("param %s: %w", key, err)
		}
	}
	return nil
}

func (e *multipartEncoder) writeFile(field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(filepath.Base(path))))
	h.Set("Content-Type", tg.MimeType(path))

	part, err := e.w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	_, err = io.Copy(part, f)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// FormValue renders a parameter for a form field or query string.
// Scalars are formatted as text, everything else is JSON-encoded.
func FormValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case json.RawMessage:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("JSON marshal: %w", err)
	}
	return string(data), nil
}
