package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers for the durable session cache.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config defines the runtime configuration of the login client. It is built
// once at startup and passed by value to every component.
type Config struct {
	Addr string `env:"LISTEN_ADDR" envDefault:":3000"`

	Provider ProviderConfig
	Backend  BackendConfig
	Store    StoreConfig

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// ProviderConfig describes the identity provider's authorization endpoint.
type ProviderConfig struct {
	ClientID     string `env:"WORKOS_CLIENT_ID"`
	RedirectURI  string `env:"WORKOS_REDIRECT_URI" envDefault:"http://localhost:3000/callback"`
	Provider     string `env:"WORKOS_PROVIDER" envDefault:"authkit"`
	Connection   string `env:"WORKOS_CONNECTION"`
	AuthorizeURL string `env:"WORKOS_AUTHORIZE_URL" envDefault:"https://api.workos.com/user_management/authorize"`
	// IssuerURL, when set, replaces AuthorizeURL with the endpoint from
	// OpenID discovery.
	IssuerURL string `env:"WORKOS_ISSUER_URL"`
}

// BackendConfig lists the first-party backend endpoints.
type BackendConfig struct {
	CallbackURL     string        `env:"BACKEND_CALLBACK_URL" envDefault:"http://localhost:9000/authkit/callback"`
	LogoutURL       string        `env:"BACKEND_LOGOUT_URL" envDefault:"http://localhost:9000/authkit/logout"`
	LogoutOthersURL string        `env:"BACKEND_LOGOUT_OTHERS_URL" envDefault:"http://localhost:9000/authkit/logout/others"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
}

// StoreConfig selects where the session record is persisted.
type StoreConfig struct {
	Driver     string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"authkit-session.db"`
	RedisURL   string `env:"REDIS_URL"`
}

// Load reads configuration values from the environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Provider.ClientID = strings.TrimSpace(cfg.Provider.ClientID)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// The client id is deliberately not required here: a missing id is reported
// on each sign-in attempt so the rest of the app stays usable.
func (c Config) validate() error {
	var invalid []string
	for name, raw := range map[string]string{
		"WORKOS_REDIRECT_URI":       c.Provider.RedirectURI,
		"WORKOS_AUTHORIZE_URL":      c.Provider.AuthorizeURL,
		"BACKEND_CALLBACK_URL":      c.Backend.CallbackURL,
		"BACKEND_LOGOUT_URL":        c.Backend.LogoutURL,
		"BACKEND_LOGOUT_OTHERS_URL": c.Backend.LogoutOthersURL,
	} {
		if !isAbsoluteURL(raw) {
			invalid = append(invalid, name)
		}
	}
	if c.Provider.IssuerURL != "" && !isAbsoluteURL(c.Provider.IssuerURL) {
		invalid = append(invalid, "WORKOS_ISSUER_URL")
	}
	if len(invalid) > 0 {
		slices.Sort(invalid)
		return fmt.Errorf("invalid URL configuration: %s", strings.Join(invalid, ", "))
	}

	if c.Backend.Timeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be greater than zero")
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case DriverRedis:
		if c.Store.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.IsAbs() && u.Host != ""
}
