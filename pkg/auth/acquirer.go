package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTokenURL is the Twitch OAuth2 token endpoint.
const DefaultTokenURL = "https://id.twitch.tv/oauth2/token"

// ProviderError reports a failed token exchange with the identity provider.
// StatusCode and Body carry the provider's response for diagnostics when the
// exchange reached the provider at all.
type ProviderError struct {
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity provider: %v", e.Err)
	}
	return fmt.Sprintf("identity provider returned status %d: %s", e.StatusCode, e.Body)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Acquirer performs the OAuth2 client-credentials exchange with Twitch.
// It never retries: retry policy belongs to the caller, where a blind retry
// cannot mask a provider outage.
type Acquirer struct {
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	logger       zerolog.Logger
}

// AcquirerOption configures an Acquirer.
type AcquirerOption func(*Acquirer)

// WithTokenURL overrides the identity provider token endpoint (for testing).
func WithTokenURL(u string) AcquirerOption {
	return func(a *Acquirer) {
		a.tokenURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) AcquirerOption {
	return func(a *Acquirer) {
		a.httpClient = c
	}
}

// NewAcquirer creates an Acquirer for the given client credentials.
func NewAcquirer(clientID, clientSecret string, opts ...AcquirerOption) *Acquirer {
	a := &Acquirer{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		tokenURL:     DefaultTokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       log.With().Str("component", "token-acquirer").Logger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// tokenResponse is the subset of the provider's success body we consume.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Acquire exchanges the client credentials for a fresh app access token.
// The credentials travel as query parameters per the Twitch client-credentials
// grant documentation, not as an Authorization header.
func (a *Acquirer) Acquire(ctx context.Context) (Token, error) {
	params := url.Values{
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
		"grant_type":    {"client_credentials"},
	}
	exchangeURL := a.tokenURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, exchangeURL, nil)
	if err != nil {
		return Token{}, &ProviderError{Err: fmt.Errorf("create token request: %w", err)}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		// Transport errors embed the full request URL, which carries the
		// client secret as a query parameter. Strip it before the error can
		// reach a log line or response body.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = a.tokenURL
		}
		tokenAcquisitionsTotal.WithLabelValues("network_error").Inc()
		a.logger.Error().Err(err).Msg("Token exchange request failed")
		return Token{}, &ProviderError{Err: fmt.Errorf("token exchange: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tokenAcquisitionsTotal.WithLabelValues("network_error").Inc()
		return Token{}, &ProviderError{Err: fmt.Errorf("read token response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		tokenAcquisitionsTotal.WithLabelValues("provider_error").Inc()
		a.logger.Error().
			Int("status", resp.StatusCode).
			Msg("Identity provider rejected token exchange")
		return Token{}, &ProviderError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		tokenAcquisitionsTotal.WithLabelValues("malformed_response").Inc()
		return Token{}, &ProviderError{Err: fmt.Errorf("decode token response: %w", err)}
	}

	value := strings.TrimSpace(tr.AccessToken)
	if value == "" {
		tokenAcquisitionsTotal.WithLabelValues("malformed_response").Inc()
		a.logger.Error().Msg("Identity provider returned empty access token")
		return Token{}, &ProviderError{Err: fmt.Errorf("token response has no usable access_token")}
	}

	tokenAcquisitionsTotal.WithLabelValues("success").Inc()
	a.logger.Debug().Msg("Acquired app access token")

	return Token{
		Value:      value,
		AcquiredAt: time.Now(),
	}, nil
}
