package auth

import (
	"context"
	"errors"
)

// LogoutRequest describes one logout action.
type LogoutRequest struct {
	Endpoint       string
	SuccessMessage string
	// ClearLocal resets the session cache after the backend confirms.
	ClearLocal bool
}

// LogoutThisDevice ends the current session and clears local state.
func (s *Service) LogoutThisDevice(ctx context.Context) (string, error) {
	return s.Logout(ctx, LogoutRequest{
		Endpoint:       s.backend.LogoutURL,
		SuccessMessage: "Logged out from this device.",
		ClearLocal:     true,
	})
}

// LogoutOtherDevices ends every other session of the user. This device stays
// signed in.
func (s *Service) LogoutOtherDevices(ctx context.Context) (string, error) {
	return s.Logout(ctx, LogoutRequest{
		Endpoint:       s.backend.LogoutOthersURL,
		SuccessMessage: "Logged out from other devices.",
	})
}

// Logout sends an authenticated logout to req.Endpoint and returns the
// success message. Only one logout runs at a time; a concurrent call fails
// with ErrLogoutInFlight.
func (s *Service) Logout(ctx context.Context, req LogoutRequest) (string, error) {
	scope := "other_devices"
	if req.ClearLocal {
		scope = "this_device"
	}

	msg, err := s.logout(ctx, req)
	logoutsTotal.WithLabelValues(scope, outcomeLabel(err)).Inc()
	if err != nil {
		s.logger.Warn("logout failed", "scope", scope, "error", err)
		return "", err
	}
	s.logger.Info("logout succeeded", "scope", scope)
	return msg, nil
}

func (s *Service) logout(ctx context.Context, req LogoutRequest) (string, error) {
	if req.Endpoint == "" {
		return "", errors.New("logout endpoint is required")
	}
	if !s.beginLogout(req.Endpoint) {
		return "", ErrLogoutInFlight
	}
	defer s.endLogout()

	rec, ok, err := s.cache.Read(ctx)
	if err != nil {
		return "", err
	}
	token := rec.AccessToken()
	if !ok || token == "" {
		return "", ErrNoAccessToken
	}

	resp, err := s.postJSON(ctx, "logout", req.Endpoint, logoutRequestBody{AccessToken: token}, token)
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", &BackendHTTPError{Operation: "logout API", StatusCode: resp.StatusCode, Body: resp.Body}
	}

	if req.ClearLocal {
		if err := s.cache.Clear(ctx); err != nil {
			return "", err
		}
	}
	return req.SuccessMessage, nil
}

// LogoutInFlight returns the endpoint of the logout being dispatched, or "".
func (s *Service) LogoutInFlight() string {
	s.logoutMu.Lock()
	defer s.logoutMu.Unlock()
	return s.logoutInFlight
}

func (s *Service) beginLogout(endpoint string) bool {
	s.logoutMu.Lock()
	defer s.logoutMu.Unlock()
	if s.logoutInFlight != "" {
		return false
	}
	s.logoutInFlight = endpoint
	return true
}

func (s *Service) endLogout() {
	s.logoutMu.Lock()
	defer s.logoutMu.Unlock()
	s.logoutInFlight = ""
}
