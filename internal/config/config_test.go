package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Empty(t, cfg.Provider.ClientID)
	assert.Equal(t, "http://localhost:3000/callback", cfg.Provider.RedirectURI)
	assert.Equal(t, "authkit", cfg.Provider.Provider)
	assert.Empty(t, cfg.Provider.Connection)
	assert.Equal(t, "https://api.workos.com/user_management/authorize", cfg.Provider.AuthorizeURL)
	assert.Equal(t, "http://localhost:9000/authkit/callback", cfg.Backend.CallbackURL)
	assert.Equal(t, "http://localhost:9000/authkit/logout", cfg.Backend.LogoutURL)
	assert.Equal(t, "http://localhost:9000/authkit/logout/others", cfg.Backend.LogoutOthersURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "authkit-session.db", cfg.Store.SQLitePath)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"WORKOS_CLIENT_ID":     "  client_123 ",
		"WORKOS_CONNECTION":    "conn_1",
		"BACKEND_CALLBACK_URL": "https://api.example.com/cb",
		"STORE_DRIVER":         "redis",
		"REDIS_URL":            "redis://localhost:6379/0",
		"HTTP_TIMEOUT":         "3s",
	})
	require.NoError(t, err)

	assert.Equal(t, "client_123", cfg.Provider.ClientID)
	assert.Equal(t, "conn_1", cfg.Provider.Connection)
	assert.Equal(t, "https://api.example.com/cb", cfg.Backend.CallbackURL)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"relative redirect", map[string]string{"WORKOS_REDIRECT_URI": "/callback"}},
		{"bad issuer", map[string]string{"WORKOS_ISSUER_URL": "not a url"}},
		{"redis without url", map[string]string{"STORE_DRIVER": "redis"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "etcd"}},
		{"zero timeout", map[string]string{"HTTP_TIMEOUT": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			require.Error(t, err)
		})
	}
}
