package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gamedb/igdb-proxy/pkg/proxy"
)

// ErrorResponse is the uniform JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeJSONError writes the error envelope with the given status and message.
func writeJSONError(w http.ResponseWriter, statusCode int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Details: details}); err != nil {
		log.Warn().Err(err).Msg("Failed to write error response")
	}
}

// apiHandler serves /api/<endpoint>: it maps the inbound request onto the
// proxy pipeline and converts pipeline failures into the error envelope.
// Backend-reported statuses pass through verbatim.
func apiHandler(client *proxy.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/")
		if endpoint == "" {
			writeJSONError(w, http.StatusBadRequest, "missing endpoint in path", "")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			// MaxBytesHandler surfaces oversized bodies here.
			writeJSONError(w, http.StatusBadRequest, "unreadable request body", err.Error())
			return
		}

		resp, err := client.Do(r.Context(), proxy.Request{
			Endpoint: endpoint,
			Method:   r.Method,
			Body:     body,
		})
		if err != nil {
			class := proxy.Classify(err)
			log.Error().
				Err(err).
				Str("endpoint", endpoint).
				Str("class", string(class)).
				Msg("Proxy request failed")
			writeJSONError(w, http.StatusInternalServerError, errorMessage(class), err.Error())
			return
		}

		contentType := resp.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		if resp.StatusCode == http.StatusOK {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", cacheMaxAgeSeconds))
		}

		w.WriteHeader(resp.StatusCode)
		if _, err := w.Write(resp.Body); err != nil {
			log.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to write response")
		}
	})
}

// cacheMaxAgeSeconds mirrors the edge cache freshness window.
const cacheMaxAgeSeconds = 300

// errorMessage maps an error class to a stable caller-facing message.
func errorMessage(class proxy.ErrorClass) string {
	switch class {
	case proxy.ErrorClassAuthProvider:
		return "authentication with the identity provider failed"
	case proxy.ErrorClassBackendNetwork:
		return "backend unavailable"
	default:
		return "internal error"
	}
}

// healthHandler reports process liveness.
func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})
}
