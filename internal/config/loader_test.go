package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocalboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8520, cfg.Server.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "primary", cfg.Google.CalendarID)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9000
  log_level: debug
auth:
  session_ttl: 24h
database:
  path: /tmp/test-vocalboard.db
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "/tmp/test-vocalboard.db", cfg.Database.Path)

	// Untouched sections keep their defaults.
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "primary", cfg.Google.CalendarID)
}

func TestLoadFromFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8520, cfg.Server.Port)
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_DB_DIR", "/var/lib/vocalboard")
	path := writeConfig(t, `
database:
  path: ${TEST_DB_DIR}/app.db
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/vocalboard/app.db", cfg.Database.Path)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOCALBOARD_NGROK_AUTHTOKEN", "env-ngrok-token")
	t.Setenv("GOOGLE_CLIENT_ID", "env-client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "env-client-secret")

	path := writeConfig(t, `
tunnel:
  authtoken: file-token
google:
  client_id: file-id
  client_secret: file-secret
  redirect_url: http://localhost:8520/api/auth/google/callback
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "env-ngrok-token", cfg.Tunnel.AuthToken)
	assert.Equal(t, "env-client-id", cfg.Google.ClientID)
	assert.Equal(t, "env-client-secret", cfg.Google.ClientSecret)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "non-positive session ttl",
			mutate:  func(c *Config) { c.Auth.SessionTTL = 0 },
			wantErr: "session_ttl",
		},
		{
			name: "client id without secret",
			mutate: func(c *Config) {
				c.Google.ClientID = "id"
				c.Google.RedirectURL = "http://localhost/cb"
			},
			wantErr: "client_secret",
		},
		{
			name: "client id without redirect",
			mutate: func(c *Config) {
				c.Google.ClientID = "id"
				c.Google.ClientSecret = "secret"
			},
			wantErr: "redirect_url",
		},
		{
			name:    "tunnel without token",
			mutate:  func(c *Config) { c.Tunnel.Enabled = true },
			wantErr: "authtoken",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Defaults()
			tc.mutate(cfg)
			err := validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_FillsCalendarID(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Google.CalendarID = ""
	require.NoError(t, validate(cfg))
	assert.Equal(t, "primary", cfg.Google.CalendarID)
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "x.db"), ExpandHome("~/.config/x.db"))
	assert.Equal(t, "/absolute/x.db", ExpandHome("/absolute/x.db"))
}
