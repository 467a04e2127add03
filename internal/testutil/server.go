package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// MockTelegramServer provides a mock Telegram Bot API server for testing.
// Handlers are keyed by Bot API method name ("sendMessage"), whatever the
// HTTP method or token used.
type MockTelegramServer struct {
	*httptest.Server
	t        *testing.T
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	files    map[string]http.HandlerFunc
	captures []Capture
}

// NewMockServer creates a mock Telegram API server.
// The server is automatically closed when the test completes.
func NewMockServer(t *testing.T) *MockTelegramServer {
	t.Helper()

	m := &MockTelegramServer{
		t:        t,
		handlers: make(map[string]http.HandlerFunc),
		files:    make(map[string]http.HandlerFunc),
	}

	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Server.Close)
	return m
}

func (m *MockTelegramServer) handle(w http.ResponseWriter, r *http.Request) {
	// Read body once for capture
	body, _ := io.ReadAll(r.Body)
	r.Body.Close()

	// Restore body for downstream handler
	r.Body = io.NopCloser(bytes.NewReader(body))

	apiMethod, filePath := splitPath(r.URL.Path)

	m.mu.Lock()
	m.captures = append(m.captures, Capture{
		Method:      r.Method,
		Path:        r.URL.Path,
		APIMethod:   apiMethod,
		Query:       r.URL.Query(),
		Headers:     r.Header.Clone(),
		Body:        body,
		ContentType: r.Header.Get("Content-Type"),
		Timestamp:   time.Now(),
	})

	var handler http.HandlerFunc
	if filePath != "" {
		handler = m.files[filePath]
	} else {
		handler = m.handlers[apiMethod]
	}
	m.mu.Unlock()

	if handler != nil {
		handler(w, r)
		return
	}
	if filePath != "" {
		http.NotFound(w, r)
		return
	}

	// Default success response
	ReplyOK(w, true)
}

// splitPath extracts the API method from /bot<token>/<method>, or the file
// path from /file/bot<token>/<path>.
func splitPath(path string) (apiMethod, filePath string) {
	if rest, ok := strings.CutPrefix(path, "/file/bot"); ok {
		if _, file, found := strings.Cut(rest, "/"); found {
			return "", file
		}
		return "", ""
	}
	if rest, ok := strings.CutPrefix(path, "/bot"); ok {
		if _, method, found := strings.Cut(rest, "/"); found {
			return method, ""
		}
	}
	return "", ""
}

// On registers a handler for a Bot API method.
//
// Example:
//
//	server.On("sendMessage", func(w http.ResponseWriter, r *http.Request) {
//	    testutil.ReplyMessage(w, 123)
//	})
func (m *MockTelegramServer) On(apiMethod string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[apiMethod] = handler
}

// OnFile registers a handler for a file download path (as returned in
// File.FilePath).
func (m *MockTelegramServer) OnFile(filePath string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filePath] = handler
}

// Captures returns all captured requests.
func (m *MockTelegramServer) Captures() []Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Capture{}, m.captures...)
}

// CapturesFor returns the captured requests for one Bot API method.
func (m *MockTelegramServer) CapturesFor(apiMethod string) []Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Capture
	for _, c := range m.captures {
		if c.APIMethod == apiMethod {
			out = append(out, c)
		}
	}
	return out
}

// LastCapture returns the most recent captured request.
func (m *MockTelegramServer) LastCapture() *Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.captures) == 0 {
		return nil
	}
	c := m.captures[len(m.captures)-1]
	return &c
}

// CaptureAt returns the capture at the given index.
func (m *MockTelegramServer) CaptureAt(index int) *Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.captures) {
		return nil
	}
	c := m.captures[index]
	return &c
}

// CaptureCount returns the total number of captured requests.
func (m *MockTelegramServer) CaptureCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.captures)
}

// CallCount returns how many requests hit a Bot API method.
func (m *MockTelegramServer) CallCount(apiMethod string) int {
	return len(m.CapturesFor(apiMethod))
}

// Reset clears all captures and handlers.
func (m *MockTelegramServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captures = m.captures[:0]
	m.handlers = make(map[string]http.HandlerFunc)
	m.files = make(map[string]http.HandlerFunc)
}

// ResetCaptures clears only captures, keeping handlers.
func (m *MockTelegramServer) ResetCaptures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captures = m.captures[:0]
}

// TimeBetweenCaptures returns the duration between two captures.
// Useful for rate-limit testing.
func (m *MockTelegramServer) TimeBetweenCaptures(i, j int) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || j < 0 || i >= len(m.captures) || j >= len(m.captures) {
		return 0
	}
	return m.captures[j].Timestamp.Sub(m.captures[i].Timestamp)
}

// BaseURL returns the server's base URL.
// Use this as the API base URL when creating gateways.
func (m *MockTelegramServer) BaseURL() string {
	return m.Server.URL
}

// BotURL returns the method URL for a given token.
// Example: server.BotURL(testutil.TestToken, "getMe").
func (m *MockTelegramServer) BotURL(token, apiMethod string) string {
	return m.Server.URL + "/bot" + token + "/" + apiMethod
}
