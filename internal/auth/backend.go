package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxBackendBody = 1 << 20

type exchangeRequest struct {
	Code        string `json:"code"`
	State       string `json:"state,omitempty"`
	RedirectURI string `json:"redirectUri"`
}

type logoutRequestBody struct {
	AccessToken string `json:"accessToken"`
}

type backendResponse struct {
	StatusCode int
	Body       string
}

func (r backendResponse) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// postJSON sends body to url and returns the status and the response text.
// bearer, when non-empty, is sent as an Authorization header.
func (s *Service) postJSON(ctx context.Context, operation, url string, body any, bearer string) (backendResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return backendResponse{}, fmt.Errorf("encode %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return backendResponse{}, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	backendRequestSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		return backendResponse{}, fmt.Errorf("%s request: %w", operation, err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxBackendBody+1))
	if err != nil {
		return backendResponse{}, fmt.Errorf("read %s response: %w", operation, err)
	}
	if len(text) > maxBackendBody {
		return backendResponse{}, fmt.Errorf("%s response: %w", operation, ErrResponseTooLarge)
	}
	return backendResponse{StatusCode: resp.StatusCode, Body: string(text)}, nil
}
