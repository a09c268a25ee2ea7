package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/tomfrenzel/authkit-login/internal/config"
	"github.com/tomfrenzel/authkit-login/internal/kv"
	"github.com/tomfrenzel/authkit-login/internal/logging"
	"github.com/tomfrenzel/authkit-login/internal/payload"
	"github.com/tomfrenzel/authkit-login/internal/session"
)

// Service drives the authorization-code login against the identity provider
// and relays codes and logouts to the first-party backend.
type Service struct {
	oauth2Config *oauth2.Config
	provider     config.ProviderConfig
	backend      config.BackendConfig
	cache        *session.Cache
	states       stateStore
	locks        replayLocks
	httpClient   *http.Client
	logger       *slog.Logger
	newState     func() string

	// callbackMu makes the replay-lock check and the pending write one step.
	callbackMu sync.Mutex

	logoutMu       sync.Mutex
	logoutInFlight string
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient replaces the client used for discovery and backend calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithStateGenerator replaces the anti-forgery token generator.
func WithStateGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newState = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service from config. cache owns the session record;
// transient holds the state token and replay locks.
func NewService(ctx context.Context, cfg config.Config, cache *session.Cache, transient kv.Store, opts ...Option) (*Service, error) {
	s := &Service{
		provider:   cfg.Provider,
		backend:    cfg.Backend,
		cache:      cache,
		states:     stateStore{store: transient},
		locks:      replayLocks{store: transient},
		httpClient: newHTTPClient(cfg.Backend),
		logger:     slog.Default(),
		newState:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	authURL := cfg.Provider.AuthorizeURL
	if cfg.Provider.IssuerURL != "" {
		provider, err := oidc.NewProvider(oidc.ClientContext(ctx, s.httpClient), cfg.Provider.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("create OIDC provider: %w", err)
		}
		authURL = provider.Endpoint().AuthURL
		s.logger.Info("discovered authorization endpoint", "issuer", cfg.Provider.IssuerURL, "authorize_url", authURL)
	}

	s.oauth2Config = &oauth2.Config{
		ClientID:    cfg.Provider.ClientID,
		Endpoint:    oauth2.Endpoint{AuthURL: authURL},
		RedirectURL: cfg.Provider.RedirectURI,
	}
	return s, nil
}

// BeginAuth stores a fresh state token and returns the authorization URL the
// browser should be sent to.
func (s *Service) BeginAuth(ctx context.Context) (string, error) {
	if s.oauth2Config.ClientID == "" {
		return "", &ConfigurationError{Variable: "WORKOS_CLIENT_ID"}
	}

	state := s.newState()
	if err := s.states.save(ctx, state); err != nil {
		return "", err
	}

	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("provider", s.provider.Provider)}
	if s.provider.Connection != "" {
		opts = append(opts, oauth2.SetAuthURLParam("connection", s.provider.Connection))
	}
	return s.oauth2Config.AuthCodeURL(state, opts...), nil
}

// CallbackParams are the query parameters the provider redirects back with.
// Empty values count as absent.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// ParseCallbackParams reads CallbackParams from a callback query string.
func ParseCallbackParams(q url.Values) CallbackParams {
	return CallbackParams{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// CallbackStatus is the terminal state of one callback activation.
type CallbackStatus string

const (
	CallbackStored           CallbackStatus = "stored"
	CallbackAlreadyProcessed CallbackStatus = "already-processed"
	CallbackFailed           CallbackStatus = "failed"
)

// CallbackResult is reported to the user after a callback activation.
type CallbackResult struct {
	Status  CallbackStatus
	Message string
}

var (
	resultStored    = CallbackResult{Status: CallbackStored, Message: "Code forwarded to backend successfully. Session stored locally."}
	resultDuplicate = CallbackResult{Status: CallbackAlreadyProcessed, Message: "Code already processed. Skipping duplicate callback."}
	resultFailed    = CallbackResult{Status: CallbackFailed, Message: "Callback failed."}
)

// ProcessCallback validates the provider response, exchanges the code with
// the backend at most once and stores the resulting session. It must be
// called once per callback page activation. A duplicate activation for a
// code already pending or done returns CallbackAlreadyProcessed without
// contacting the backend. On failure the returned error carries the message
// to show.
func (s *Service) ProcessCallback(ctx context.Context, params CallbackParams) (CallbackResult, error) {
	result, err := s.processCallback(ctx, params)
	switch {
	case err != nil:
		callbacksTotal.WithLabelValues(outcomeLabel(err)).Inc()
		s.logger.Warn("callback failed", "error", err)
	case result.Status == CallbackAlreadyProcessed:
		callbacksTotal.WithLabelValues("already_processed").Inc()
		s.logger.Info("skipping duplicate callback", "code", logging.Redact(params.Code))
	default:
		callbacksTotal.WithLabelValues("stored").Inc()
		s.logger.Info("session stored", "code", logging.Redact(params.Code))
	}
	return result, err
}

func (s *Service) processCallback(ctx context.Context, params CallbackParams) (CallbackResult, error) {
	if params.Error != "" {
		return resultFailed, &ProviderError{Code: params.Error, Description: params.ErrorDescription}
	}
	if params.Code == "" {
		return resultFailed, ErrMissingCode
	}

	proceed, err := s.claimCode(ctx, params)
	if err != nil {
		return resultFailed, err
	}
	if !proceed {
		return resultDuplicate, nil
	}

	if err := s.exchange(ctx, params); err != nil {
		if relErr := s.locks.release(context.WithoutCancel(ctx), params.Code); relErr != nil {
			s.logger.Error("replay lock rollback failed", "error", relErr)
		}
		return resultFailed, err
	}
	return resultStored, nil
}

// claimCode checks the replay lock and the state token and marks the code
// pending. proceed is false when the code was already claimed.
func (s *Service) claimCode(ctx context.Context, params CallbackParams) (proceed bool, err error) {
	s.callbackMu.Lock()
	defer s.callbackMu.Unlock()

	current, err := s.locks.get(ctx, params.Code)
	if err != nil {
		return false, err
	}
	if current == lockPending || current == lockDone {
		return false, nil
	}

	saved, err := s.states.load(ctx)
	if err != nil {
		return false, err
	}
	if saved != "" && params.State != "" && saved != params.State {
		// The next attempt starts from a fresh token.
		if err := s.states.discard(ctx); err != nil {
			s.logger.Error("discard mismatched state token", "error", err)
		}
		return false, ErrStateMismatch
	}

	if err := s.locks.set(ctx, params.Code, lockPending); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) exchange(ctx context.Context, params CallbackParams) error {
	resp, err := s.postJSON(ctx, "exchange", s.backend.CallbackURL, exchangeRequest{
		Code:        params.Code,
		State:       params.State,
		RedirectURI: s.provider.RedirectURI,
	}, "")
	if err != nil {
		return err
	}
	if !resp.ok() {
		return &BackendHTTPError{Operation: "backend callback", StatusCode: resp.StatusCode, Body: resp.Body}
	}

	raw, err := payload.Parse(resp.Body)
	if err != nil {
		return &MalformedResponseError{Err: err}
	}
	rec, err := session.Decode(raw)
	if err != nil {
		return &MalformedResponseError{Err: err}
	}

	if err := s.cache.Write(ctx, rec); err != nil {
		return err
	}

	// The session is stored from here on, so the code must not be released
	// for another exchange. A pending marker left by a failed write still
	// blocks replays.
	if err := s.locks.set(ctx, params.Code, lockDone); err != nil {
		s.logger.Error("mark code done", "error", err)
	}
	if err := s.states.discard(ctx); err != nil {
		s.logger.Error("discard state token", "error", err)
	}
	return nil
}

// Session returns the cached session record, if any.
func (s *Service) Session(ctx context.Context) (session.Record, bool, error) {
	return s.cache.Read(ctx)
}

func newHTTPClient(cfg config.BackendConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
	}
}
