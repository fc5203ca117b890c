package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gamedb/igdb-proxy/pkg/auth"
)

// DefaultBackendURL is the IGDB API base URL.
const DefaultBackendURL = "https://api.igdb.com/v4"

// Forwarder maps a proxy request onto an outbound IGDB call and executes it
// with a supplied bearer token. Exactly one network call per invocation; no
// interpretation of the response.
type Forwarder struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	logger     zerolog.Logger
}

// ForwarderOption configures a Forwarder.
type ForwarderOption func(*Forwarder)

// WithBackendURL overrides the backend base URL (for testing).
func WithBackendURL(u string) ForwarderOption {
	return func(f *Forwarder) {
		f.baseURL = strings.TrimRight(u, "/")
	}
}

// WithForwarderHTTPClient sets a custom HTTP client.
func WithForwarderHTTPClient(c *http.Client) ForwarderOption {
	return func(f *Forwarder) {
		f.httpClient = c
	}
}

// NewForwarder creates a Forwarder identified to IGDB by the given client ID.
func NewForwarder(clientID string, opts ...ForwarderOption) *Forwarder {
	f := &Forwarder{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:  DefaultBackendURL,
		clientID: clientID,
		logger:   log.With().Str("component", "forwarder").Logger(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Forward executes the backend call for req using token. Transport failures
// are reported as BackendUnavailableError; any HTTP status is a success from
// the forwarder's point of view.
func (f *Forwarder) Forward(ctx context.Context, req Request, token auth.Token) (*Response, error) {
	endpoint := strings.Trim(req.Endpoint, "/")
	backendURL := f.baseURL + "/" + endpoint

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	outbound, err := http.NewRequestWithContext(ctx, req.Method, backendURL, body)
	if err != nil {
		return nil, &BackendUnavailableError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("create backend request: %w", err),
		}
	}

	outbound.Header.Set("Client-ID", f.clientID)
	outbound.Header.Set("Authorization", "Bearer "+token.Value)
	outbound.Header.Set("Accept", "application/json")
	if len(req.Body) > 0 {
		// Apicalypse query bodies are plain text.
		outbound.Header.Set("Content-Type", "text/plain")
	}

	f.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Forwarding request to backend")

	resp, err := f.httpClient.Do(outbound)
	if err != nil {
		f.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Backend request failed")
		return nil, &BackendUnavailableError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &BackendUnavailableError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("read backend response: %w", err),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Body:        respBody,
		ContentType: contentType,
	}, nil
}
