package main

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/tomfrenzel/authkit-login/internal/auth"
	"github.com/tomfrenzel/authkit-login/internal/payload"
	"github.com/tomfrenzel/authkit-login/internal/session"
)

// displayMessage turns a flow error into the sentence shown on the page.
// Provider and backend bodies are shown verbatim.
func displayMessage(err error) string {
	var (
		cfgErr      *auth.ConfigurationError
		providerErr *auth.ProviderError
		httpErr     *auth.BackendHTTPError
	)
	switch {
	case errors.As(err, &providerErr):
		return providerErr.Error()
	case errors.As(err, &httpErr):
		if httpErr.Body != "" {
			return httpErr.Body
		}
		return fmt.Sprintf("%s failed (%d)", upperFirst(httpErr.Operation), httpErr.StatusCode)
	case errors.As(err, &cfgErr):
		return fmt.Sprintf("Set %s before signing in.", cfgErr.Variable)
	case errors.Is(err, auth.ErrMissingCode):
		return "No authorization code found in callback URL."
	case errors.Is(err, auth.ErrStateMismatch):
		return "State mismatch. Please retry sign in."
	case errors.Is(err, auth.ErrNoAccessToken):
		return "No access token found. Sign in first."
	case errors.Is(err, auth.ErrLogoutInFlight):
		return "A logout request is already in progress."
	case errors.Is(err, auth.ErrResponseTooLarge):
		return "Backend response is too large."
	case errors.Is(err, payload.ErrEmpty):
		return "Backend returned an empty response."
	case errors.Is(err, payload.ErrInvalidJSON):
		return "Backend returned invalid JSON."
	case errors.Is(err, session.ErrNoAccessToken):
		return "Callback response did not include session.accessToken."
	default:
		return upperFirst(err.Error())
	}
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
