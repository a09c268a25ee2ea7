package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomfrenzel/authkit-login/internal/auth"
	"github.com/tomfrenzel/authkit-login/internal/config"
	"github.com/tomfrenzel/authkit-login/internal/jwt"
	"github.com/tomfrenzel/authkit-login/internal/kv"
	"github.com/tomfrenzel/authkit-login/internal/kv/rediskv"
	"github.com/tomfrenzel/authkit-login/internal/kv/sqlitekv"
	"github.com/tomfrenzel/authkit-login/internal/logging"
	"github.com/tomfrenzel/authkit-login/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "authkit-login: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	durable, closeStore, err := openDurableStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer closeStore()

	// Lives as long as the process, like a browser tab's session storage.
	transient := kv.NewMemory()
	cache := session.NewCache(durable, transient, logger)

	authService, err := auth.NewService(ctx, cfg, cache, transient, auth.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}
	if cfg.Provider.ClientID == "" {
		logger.Warn("WORKOS_CLIENT_ID is not set; sign-in is disabled until it is configured")
	}

	srv := &server{
		cfg:         cfg,
		authService: authService,
		logger:      logger,
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("login client listening", "addr", cfg.Addr, "store", cfg.Store.Driver, "backend", cfg.Backend.CallbackURL)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDurableStore(ctx context.Context, cfg config.StoreConfig) (kv.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := sqlitekv.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.DriverRedis:
		client, err := rediskv.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rediskv.New(client), func() { _ = client.Close() }, nil
	default:
		return kv.NewMemory(), func() {}, nil
	}
}

// sessionService is the part of auth.Service the handlers use.
type sessionService interface {
	BeginAuth(ctx context.Context) (string, error)
	ProcessCallback(ctx context.Context, params auth.CallbackParams) (auth.CallbackResult, error)
	Session(ctx context.Context) (session.Record, bool, error)
	LogoutThisDevice(ctx context.Context) (string, error)
	LogoutOtherDevices(ctx context.Context) (string, error)
	LogoutInFlight() string
}

type server struct {
	cfg         config.Config
	authService sessionService
	logger      *slog.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.homeHandler)
	r.Get("/login", s.loginHandler)
	r.Get("/callback", s.callbackHandler)
	r.Group(func(r chi.Router) {
		r.Use(requireSameOrigin)
		r.Post("/logout", s.logoutHandler)
		r.Post("/logout/others", s.logoutOthersHandler)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *server) homeHandler(w http.ResponseWriter, r *http.Request) {
	s.renderHome(w, r, http.StatusOK, "", "")
}

func (s *server) loginHandler(w http.ResponseWriter, r *http.Request) {
	authURL, err := s.authService.BeginAuth(r.Context())
	if err != nil {
		var cfgErr *auth.ConfigurationError
		if errors.As(err, &cfgErr) {
			s.renderHome(w, r, http.StatusOK, "", displayMessage(err))
			return
		}
		s.logger.Error("start authentication", "error", err)
		s.renderHome(w, r, http.StatusInternalServerError, "", "Failed to start authentication.")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *server) callbackHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.authService.ProcessCallback(r.Context(), auth.ParseCallbackParams(r.URL.Query()))

	data := callbackPage{
		Status:             result.Message,
		BackendCallbackURL: s.cfg.Backend.CallbackURL,
	}
	if err != nil {
		data.Error = displayMessage(err)
	}
	render(w, s.logger, http.StatusOK, callbackTemplate, data)
}

func (s *server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.handleLogout(w, r, s.authService.LogoutThisDevice)
}

func (s *server) logoutOthersHandler(w http.ResponseWriter, r *http.Request) {
	s.handleLogout(w, r, s.authService.LogoutOtherDevices)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request, logout func(context.Context) (string, error)) {
	msg, err := logout(r.Context())
	if err != nil {
		status := http.StatusOK
		if errors.Is(err, auth.ErrLogoutInFlight) {
			status = http.StatusConflict
		}
		s.renderHome(w, r, status, "", displayMessage(err))
		return
	}
	s.renderHome(w, r, http.StatusOK, msg, "")
}

func (s *server) renderHome(w http.ResponseWriter, r *http.Request, status int, info, errMsg string) {
	data := homePage{
		Info:            info,
		Error:           errMsg,
		RedirectURI:     s.cfg.Provider.RedirectURI,
		LogoutURL:       s.cfg.Backend.LogoutURL,
		LogoutOthersURL: s.cfg.Backend.LogoutOthersURL,
	}

	rec, ok, err := s.authService.Session(r.Context())
	if err != nil {
		s.logger.Error("read session cache", "error", err)
		if data.Error == "" {
			data.Error = "Could not read the local session."
		}
	}
	if ok {
		data.Email = rec.Email()
		data.HasToken = rec.AccessToken() != ""
		if claims, err := jwt.Inspect(rec.AccessToken()); err == nil {
			data.Claims = &claims
			data.TokenExpired = claims.Expired(time.Now())
		}
	}
	data.LogoutDisabled = !data.HasToken || s.authService.LogoutInFlight() != ""

	render(w, s.logger, status, homeTemplate, data)
}
