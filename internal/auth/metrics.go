package auth

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authkit_callbacks_total",
		Help: "Callback activations by outcome",
	}, []string{"outcome"})

	logoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authkit_logouts_total",
		Help: "Logout dispatches by scope and outcome",
	}, []string{"scope", "outcome"})

	backendRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "authkit_backend_request_duration_seconds",
		Help:    "Latency of requests to the first-party backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// outcomeLabel maps a flow error onto a bounded metric label.
func outcomeLabel(err error) string {
	var (
		cfgErr       *ConfigurationError
		providerErr  *ProviderError
		httpErr      *BackendHTTPError
		malformedErr *MalformedResponseError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &cfgErr):
		return "configuration_error"
	case errors.As(err, &providerErr):
		return "provider_error"
	case errors.Is(err, ErrMissingCode):
		return "missing_code"
	case errors.Is(err, ErrStateMismatch):
		return "state_mismatch"
	case errors.As(err, &httpErr):
		return "backend_http_error"
	case errors.As(err, &malformedErr):
		return "malformed_response"
	case errors.Is(err, ErrNoAccessToken):
		return "no_access_token"
	case errors.Is(err, ErrResponseTooLarge):
		return "response_too_large"
	case errors.Is(err, ErrLogoutInFlight):
		return "in_flight"
	default:
		return "error"
	}
}
