package proxy

import (
	"errors"
	"fmt"

	"github.com/gamedb/igdb-proxy/pkg/auth"
)

// ErrorClass represents a classification of pipeline failures.
type ErrorClass string

const (
	// ErrorClassAuthProvider represents token exchange failures.
	ErrorClassAuthProvider ErrorClass = "auth_provider"

	// ErrorClassBackendNetwork represents transport failures reaching IGDB.
	ErrorClassBackendNetwork ErrorClass = "backend_network"

	// ErrorClassInternal represents anything else.
	ErrorClassInternal ErrorClass = "internal"
)

// BackendUnavailableError reports a transport failure reaching the backend.
// HTTP error statuses from the backend are not errors - they pass through as
// ordinary responses.
type BackendUnavailableError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend unavailable (%s): %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *BackendUnavailableError) Unwrap() error {
	return e.Err
}

// Classify categorizes a pipeline error for observability.
func Classify(err error) ErrorClass {
	var provErr *auth.ProviderError
	if errors.As(err, &provErr) {
		return ErrorClassAuthProvider
	}

	var backendErr *BackendUnavailableError
	if errors.As(err, &backendErr) {
		return ErrorClassBackendNetwork
	}

	return ErrorClassInternal
}
