// Package testutil provides mock IGDB and Twitch identity servers for tests.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockBackend is a configurable mock IGDB server.
type MockBackend struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
	LastRequestBody   []byte
}

// NewMockBackend creates a new mock IGDB server.
func NewMockBackend() *MockBackend {
	mock := &MockBackend{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastRequestBody = body
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockBackend) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockBackend) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.LastRequestBody = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockBackend) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockBackend) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockBackend) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastAuthorization returns the Authorization header of the last request.
func (m *MockBackend) GetLastAuthorization() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.LastRequestHeader == nil {
		return ""
	}
	return m.LastRequestHeader.Get("Authorization")
}

// defaultHandler provides default IGDB-like responses.
func (m *MockBackend) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`[]`))
}

// MockIdentity is a mock Twitch identity provider issuing sequential tokens.
type MockIdentity struct {
	server *httptest.Server
	mu     sync.Mutex

	// AcquisitionCount is the number of token exchanges performed.
	AcquisitionCount int

	// FailWith, when non-zero, makes the provider respond with this status.
	FailWith int

	// TokenBody, when set, overrides the response body entirely.
	TokenBody string

	// Delay is applied before each response.
	Delay time.Duration
}

// NewMockIdentity creates a new mock identity provider.
func NewMockIdentity() *MockIdentity {
	mock := &MockIdentity{}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		delay := mock.Delay
		mock.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}

		mock.mu.Lock()
		defer mock.mu.Unlock()

		mock.AcquisitionCount++

		if mock.FailWith != 0 {
			w.WriteHeader(mock.FailWith)
			w.Write([]byte(`{"status":` + fmt.Sprint(mock.FailWith) + `,"message":"exchange failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if mock.TokenBody != "" {
			w.Write([]byte(mock.TokenBody))
			return
		}

		fmt.Fprintf(w, `{"access_token":"tok%d","expires_in":5184000,"token_type":"bearer"}`, mock.AcquisitionCount)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockIdentity) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockIdentity) Close() {
	m.server.Close()
}

// GetAcquisitionCount returns the number of token exchanges performed.
func (m *MockIdentity) GetAcquisitionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AcquisitionCount
}

// SetFailure makes subsequent exchanges fail with the given status.
func (m *MockIdentity) SetFailure(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailWith = status
}

// SetTokenBody overrides the success response body.
func (m *MockIdentity) SetTokenBody(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TokenBody = body
}

// SetDelay applies a delay before each response.
func (m *MockIdentity) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Delay = d
}
