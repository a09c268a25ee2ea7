package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tomfrenzel/authkit-login/internal/auth"
	"github.com/tomfrenzel/authkit-login/internal/payload"
	"github.com/tomfrenzel/authkit-login/internal/session"
)

func TestDisplayMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&auth.ConfigurationError{Variable: "WORKOS_CLIENT_ID"}, "Set WORKOS_CLIENT_ID before signing in."},
		{&auth.ProviderError{Code: "access_denied", Description: "user cancelled"}, "user cancelled"},
		{&auth.ProviderError{Code: "access_denied"}, "access_denied"},
		{auth.ErrMissingCode, "No authorization code found in callback URL."},
		{auth.ErrStateMismatch, "State mismatch. Please retry sign in."},
		{auth.ErrNoAccessToken, "No access token found. Sign in first."},
		{auth.ErrLogoutInFlight, "A logout request is already in progress."},
		{&auth.BackendHTTPError{Operation: "backend callback", StatusCode: 500, Body: "server error"}, "server error"},
		{&auth.BackendHTTPError{Operation: "backend callback", StatusCode: 502}, "Backend callback failed (502)"},
		{&auth.BackendHTTPError{Operation: "logout API", StatusCode: 503}, "Logout API failed (503)"},
		{&auth.MalformedResponseError{Err: payload.ErrEmpty}, "Backend returned an empty response."},
		{&auth.MalformedResponseError{Err: fmt.Errorf("%w: eof", payload.ErrInvalidJSON)}, "Backend returned invalid JSON."},
		{&auth.MalformedResponseError{Err: session.ErrNoAccessToken}, "Callback response did not include session.accessToken."},
		{fmt.Errorf("exchange response: %w", auth.ErrResponseTooLarge), "Backend response is too large."},
		{errors.New("exchange request: dial tcp: connection refused"), "Exchange request: dial tcp: connection refused"},
	}

	for _, tt := range tests {
		if got := displayMessage(tt.err); got != tt.want {
			t.Fatalf("displayMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
