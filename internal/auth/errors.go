package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("no authorization code found in callback URL")
	// ErrStateMismatch is returned when the returned state differs from the stored one.
	ErrStateMismatch = errors.New("state mismatch, please retry sign in")
	// ErrNoAccessToken is returned by logout when no session is cached.
	ErrNoAccessToken = errors.New("no access token found, sign in first")
	// ErrResponseTooLarge is returned when a backend body exceeds the read limit.
	ErrResponseTooLarge = errors.New("backend response exceeds 1 MiB")
	// ErrLogoutInFlight is returned when a logout is already being dispatched.
	ErrLogoutInFlight = errors.New("a logout request is already in progress")
)

// ConfigurationError reports a setting that must be provided before signing in.
type ConfigurationError struct {
	Variable string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("set %s before signing in", e.Variable)
}

// ProviderError is an error reported by the identity provider on the callback.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Code
}

// BackendHTTPError is a non-2xx response from the backend. Its message is the
// response body verbatim when there is one.
type BackendHTTPError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *BackendHTTPError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("%s failed (%d)", e.Operation, e.StatusCode)
}

// MalformedResponseError wraps a backend body that could not be used.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return e.Err.Error()
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
