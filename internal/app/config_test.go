package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iasql/cli/internal/deviceflow"
	"github.com/iasql/cli/internal/tokenstore"
)

func TestDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, LogLevelWarn, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Equal(t, EnvironmentProduction, cfg.Env)
	assert.Equal(t, TokenStorageTypeFile, cfg.Auth.Storage)
	assert.Equal(t, filepath.Join(home, ".iasql", ".token"), cfg.Auth.File)
	assert.Equal(t, "AUTH_TOKEN", cfg.Auth.EnvKey)
	assert.Zero(t, cfg.Auth.PollTimeout)
	assert.Equal(t, deviceflow.Endpoint.DeviceAuthURL, cfg.OAuth.CodeURL)
	assert.Equal(t, deviceflow.Endpoint.TokenURL, cfg.OAuth.TokenURL)
	assert.Equal(t, deviceflow.ClientID, cfg.OAuth.ClientID)
	assert.Equal(t, deviceflow.Audience, cfg.OAuth.Audience)
	assert.Equal(t, 60*time.Second, cfg.API.Timeout)
	assert.Equal(t, "none", cfg.Telemetry.Exporter)
	require.NoError(t, cfg.Validate())
}

func TestApplyDefaultsExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := &Config{Auth: AuthConfig{File: "~/tokens/iasql"}}
	require.NoError(t, cfg.ApplyDefaults())
	assert.Equal(t, filepath.Join(home, "tokens", "iasql"), cfg.Auth.File)

	cfg = &Config{Auth: AuthConfig{File: "/var/lib/iasql/token"}}
	require.NoError(t, cfg.ApplyDefaults())
	assert.Equal(t, "/var/lib/iasql/token", cfg.Auth.File)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "local env", mutate: func(c *Config) { c.Env = EnvironmentLocal }},
		{name: "unknown env", mutate: func(c *Config) { c.Env = "staging" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "env storage is not writable", mutate: func(c *Config) { c.Auth.Storage = "env" }, wantErr: true},
		{name: "negative poll timeout", mutate: func(c *Config) { c.Auth.PollTimeout = -time.Second }, wantErr: true},
		{name: "invalid token url", mutate: func(c *Config) { c.OAuth.TokenURL = "not a url" }, wantErr: true},
		{name: "invalid api base url", mutate: func(c *Config) { c.API.BaseURL = "::" }, wantErr: true},
		{name: "too many retries", mutate: func(c *Config) { c.API.RetryMax = 50 }, wantErr: true},
		{name: "unknown exporter", mutate: func(c *Config) { c.Telemetry.Exporter = "zipkin" }, wantErr: true},
		{name: "otlp exporter", mutate: func(c *Config) { c.Telemetry.Exporter = "otlp-grpc" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			cfg, err := Default()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAPIBaseURL(t *testing.T) {
	cfg := &Config{Env: EnvironmentLocal}
	assert.Equal(t, "http://localhost:8088/api/v1", cfg.APIBaseURL())
	assert.Equal(t, "127.0.0.1:5432", cfg.DBServer())

	cfg.Env = EnvironmentProduction
	assert.Equal(t, "https://api.iasql.com/api/v1", cfg.APIBaseURL())
	assert.Equal(t, "db.iasql.com", cfg.DBServer())

	cfg.API.BaseURL = "https://staging.example.com/api/v1"
	assert.Equal(t, "https://staging.example.com/api/v1", cfg.APIBaseURL())
}

func TestNewTokenStore(t *testing.T) {
	cfg := AuthConfig{Storage: TokenStorageTypeFile, File: filepath.Join(t.TempDir(), ".token")}
	store, err := cfg.NewTokenStore()
	require.NoError(t, err)
	assert.IsType(t, &tokenstore.FileStore{}, store)
	assert.Equal(t, cfg.File, store.Location())

	cfg = AuthConfig{Storage: TokenStorageTypeKeyring, KeyringUser: "alice"}
	store, err = cfg.NewTokenStore()
	require.NoError(t, err)
	assert.IsType(t, &tokenstore.KeyringStore{}, store)

	cfg = AuthConfig{Storage: "env"}
	_, err = cfg.NewTokenStore()
	assert.Error(t, err)
}

func TestDeviceFlowConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Default()
	require.NoError(t, err)
	cfg.OAuth.CodeURL = "http://127.0.0.1:9/code"
	cfg.Auth.ShowQR = true
	cfg.Auth.PollTimeout = time.Minute

	flow := cfg.DeviceFlowConfig()
	assert.Equal(t, "http://127.0.0.1:9/code", flow.Endpoint.DeviceAuthURL)
	assert.Equal(t, deviceflow.Endpoint.TokenURL, flow.Endpoint.TokenURL)
	assert.Equal(t, deviceflow.Scopes, flow.Scopes)
	assert.True(t, flow.ShowQR)
	assert.Equal(t, time.Minute, flow.PollTimeout)
}
